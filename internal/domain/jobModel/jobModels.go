package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	RunInit       InternalStatus = "Init"
	RunProcessing InternalStatus = "Processing"
	Error         InternalStatus = "Error"
	Complete      InternalStatus = "Complete"
)

// Job is one pipeline run for one document. The triggering layer guarantees
// at most one active job per document id; the pipeline itself does not lock.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	DocumentId   string `json:"document_id"`
	ProjectId    string `json:"project_id"`
	IsPrimary    bool   `json:"is_primary"`
	DocumentName string `json:"document_name,omitempty"`

	//run result, filled on completion
	ChunksCreated int      `json:"chunks_created,omitempty"`
	Domains       []string `json:"domains,omitempty"`
	HasTables     bool     `json:"has_tables,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
