package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
	"github.com/akolanti/DocPipeAPI/internal/job"
	"github.com/akolanti/DocPipeAPI/internal/metrics"
	"github.com/akolanti/DocPipeAPI/internal/notify"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service   *job.Service
	documents docModel.DocumentStore
	chunks    docModel.ChunkStore
	registry  *notify.Registry
}

func InitJobHandler(jobService *job.Service, documents docModel.DocumentStore, chunks docModel.ChunkStore, registry *notify.Registry) {
	once.Do(func() {
		handlerInstance = &JobHandler{
			service:   jobService,
			documents: documents,
			chunks:    chunks,
			registry:  registry,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

// CreateNewJob queues one pipeline run. Returns false when the document
// already has a queued or running job; the caller turns that into a 409.
func CreateNewJob(newJob newJobData) bool {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	if !handlerInstance.service.TryAcquireRun(newJob.documentId) {
		logJH.Warn("Document already has an active run", "documentId", newJob.documentId)
		return false
	}
	logJH.Info("To create new job")
	handlerInstance.pushToJobChannel(newJob)
	return true
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func GetDocument(ctx context.Context, documentId string) (docModel.Document, bool) {
	if handlerInstance == nil {
		return docModel.Document{}, false
	}
	document, found := handlerInstance.documents.GetDocument(ctx, documentId)
	if !found || document.DeletedAt != nil {
		return docModel.Document{}, false
	}
	return document, true
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.RunInit
	_job.JobPayload = jobModel.JobPayload{
		DocumentId:   newJob.documentId,
		ProjectId:    newJob.projectId,
		IsPrimary:    newJob.isPrimary,
		DocumentName: newJob.documentName,
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a pipeline run involves batch embedding calls which might take time,
	//so every queued run also signals the dispatcher for an extra worker.
	//idle workers retire on their own, so at quiet times one worker remains

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	metrics.StartDispatcherSignalCount()                         //metrics
	logJH.Debug("Request count ", accurateCount)
	h.service.DispatcherChannel <- true
}
