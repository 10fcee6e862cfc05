package job

import (
	"sync"

	"github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore

	runMutex   sync.Mutex
	activeRuns map[string]struct{}
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		activeRuns:        make(map[string]struct{}),
	}
}

// TryAcquireRun claims the document for one pipeline run. Returns false when
// a run for the same document is already queued or executing; the pipeline
// itself does not lock per document, so this is the only guard.
func (s *Service) TryAcquireRun(documentId string) bool {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if _, active := s.activeRuns[documentId]; active {
		return false
	}
	s.activeRuns[documentId] = struct{}{}
	return true
}

func (s *Service) ReleaseRun(documentId string) {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	delete(s.activeRuns, documentId)
}
