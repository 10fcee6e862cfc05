package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
	"github.com/akolanti/DocPipeAPI/internal/job"
	"github.com/akolanti/DocPipeAPI/internal/pipeline"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

// MockPipelineService to track if jobs are executed
type MockPipelineService struct {
	ProcessedCount int32
	OnRun          func(ctx context.Context, documentId string, projectId string, isPrimary bool) (pipeline.Result, error)
}

func (m *MockPipelineService) Run(ctx context.Context, documentId string, projectId string, isPrimary bool) (pipeline.Result, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnRun != nil {
		return m.OnRun(ctx, documentId, projectId, isPrimary)
	}
	return pipeline.Result{Status: "success", DocumentId: documentId}, nil
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	//TODO implement me
	panic("implement me")
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {
	//TODO implement me
	panic("implement me")
}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	})
	mockPipeline := &MockPipelineService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockPipeline)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobPayload: jobModel.JobPayload{DocumentId: "doc-1"}}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockPipeline.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Worker releases the document run slot", func(t *testing.T) {
		if !jobSvc.TryAcquireRun("doc-1") {
			t.Error("Run slot for doc-1 should be free after the job finished")
		}
		jobSvc.ReleaseRun("doc-1")
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_JobStateOnFailure(t *testing.T) {
	logger = logger_i.NewLogger("TestWorkerPool")

	var savedStatuses []jobModel.JobStatus
	var savedError jobModel.JobError
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job),
		DispatcherChannel: make(chan bool, 1),
		JobStore: &MockJobStore{
			OnSaveJob: func(ctx context.Context, j jobModel.Job) error {
				savedStatuses = append(savedStatuses, j.Status)
				savedError = j.Error
				return nil
			},
		},
	})
	mockPipeline := &MockPipelineService{
		OnRun: func(ctx context.Context, documentId string, projectId string, isPrimary bool) (pipeline.Result, error) {
			return pipeline.Result{}, context.DeadlineExceeded
		},
	}
	InitServices(jobSvc, mockPipeline)

	executeJob(jobModel.Job{Id: "fail-1", JobPayload: jobModel.JobPayload{DocumentId: "doc-fail"}})

	if len(savedStatuses) != 2 {
		t.Fatalf("Expected 2 state saves (running, error), got %d", len(savedStatuses))
	}
	if savedStatuses[0] != jobModel.JobStatusRunning {
		t.Errorf("First save should be RUNNING, got %s", savedStatuses[0])
	}
	if savedStatuses[1] != jobModel.JobStatusError {
		t.Errorf("Second save should be Error, got %s", savedStatuses[1])
	}
	if savedError.Message == "" {
		t.Error("Failed job should carry the error message")
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2) // Must be > 1 based on your logic
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel: make(chan jobModel.Job),
	})
	InitServices(jobSvc, &MockPipelineService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 1 worker manually
	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}
