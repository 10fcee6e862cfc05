package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

// PipelineResult is filled once the run finishes; nil while queued/running.
type PipelineResult struct {
	DocumentId    string   `json:"document_id"`
	ChunksCreated int      `json:"chunks_created"`
	Domains       []string `json:"technical_domains"`
	HasTables     bool     `json:"has_tables"`
}

type Result struct {
	Status         string          `json:"status"`
	PipelineResult *PipelineResult `json:"pipeline_result,omitempty"`
}

type InitJobResponse struct {
	Id          string `json:"id"`
	DocumentId  string `json:"document_id"`
	StatusURL   string `json:"status_url"`
	ProgressURL string `json:"progress_url"`
}

type DocumentResponse struct {
	Id               string         `json:"id"`
	ProjectId        string         `json:"project_id"`
	Filename         string         `json:"filename"`
	FileType         string         `json:"file_type"`
	FileSizeBytes    int64          `json:"file_size_bytes"`
	DocumentType     string         `json:"document_type"`
	IsPrimary        bool           `json:"is_primary"`
	ProcessingStatus string         `json:"processing_status"`
	ProcessingError  string         `json:"processing_error,omitempty"`
	UploadedAt       time.Time      `json:"uploaded_at"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
	Metadata         map[string]any `json:"metadata"`
}

type ChunkResponse struct {
	Id              string         `json:"chunk_id"`
	DocumentId      string         `json:"document_id"`
	Text            string         `json:"text"`
	ChunkIndex      int            `json:"chunk_index"`
	SectionType     string         `json:"section_type"`
	TokenCount      int            `json:"token_count"`
	PageNumber      int            `json:"page_number,omitempty"`
	ImportanceScore float64        `json:"importance_score"`
	Metadata        map[string]any `json:"metadata"`
}

type ChunkListResponse struct {
	DocumentId string          `json:"document_id"`
	Count      int             `json:"count"`
	Chunks     []ChunkResponse `json:"chunks"`
}

// ProgressEvent documents the SSE payload shape; the notify package owns the
// actual wire struct.
type ProgressEvent struct {
	Stage    string  `json:"stage" example:"embedding"`
	Progress int     `json:"progress" example:"70"`
	Error    *string `json:"error"`
}

// requests---------------------

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type UploadDocumentRequest struct {
	ProjectId    string `json:"project_id" validate:"required"`
	DocumentType string `json:"document_type"`
	IsPrimary    bool   `json:"is_primary"`
}
