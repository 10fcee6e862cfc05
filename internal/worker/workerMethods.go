package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	jobmodel "github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
	"github.com/akolanti/DocPipeAPI/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	defer _jobService.ReleaseRun(job.JobPayload.DocumentId)
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.PipelineRunTimeout)
	defer cancel()
	logger.With("trace Id ", job.TraceId)
	logger.Debug("Processing job:", "job Id:", job.Id)

	job.CurrentStep = jobmodel.RunProcessing
	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	result, err := _pipelineService.Run(ctx, job.JobPayload.DocumentId, job.JobPayload.ProjectId, job.JobPayload.IsPrimary)
	if err != nil {
		job.CurrentStep = jobmodel.Error
		job.Error = jobmodel.JobError{Code: 500, Message: err.Error()}
		job.EndTime = time.Now()
		saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}

	job.JobPayload.ChunksCreated = result.ChunksCreated
	job.JobPayload.Domains = result.Domains
	job.JobPayload.HasTables = result.HasTables
	job.CurrentStep = jobmodel.Complete
	job.EndTime = time.Now()
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
