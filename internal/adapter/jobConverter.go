package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/api"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
)

func ToInitJobResponse(id string, documentId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:          id,
		DocumentId:  documentId,
		StatusURL:   fmt.Sprintf("status/%s", id),
		ProgressURL: fmt.Sprintf("documents/%s/progress", documentId),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:         string(job.Status),
		PipelineResult: ToPipelineResult(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

// ToPipelineResult is nil until the run finishes; queued, running, and
// failed jobs report status only. A completed run over an empty document
// still gets a result, with zero chunks.
func ToPipelineResult(job jobModel.Job) *api.PipelineResult {
	if job.Status != jobModel.JobStatusComplete {
		return nil
	}

	return &api.PipelineResult{
		DocumentId:    job.JobPayload.DocumentId,
		ChunksCreated: job.JobPayload.ChunksCreated,
		Domains:       job.JobPayload.Domains,
		HasTables:     job.JobPayload.HasTables,
	}
}

func ToDocumentResponse(document docModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:               document.Id,
		ProjectId:        document.ProjectId,
		Filename:         document.Filename,
		FileType:         document.FileType,
		FileSizeBytes:    document.FileSizeBytes,
		DocumentType:     document.DocumentType,
		IsPrimary:        document.IsPrimary,
		ProcessingStatus: string(document.ProcessingStatus),
		ProcessingError:  document.ProcessingError,
		UploadedAt:       document.UploadedAt,
		ProcessedAt:      document.ProcessedAt,
		Metadata:         document.Metadata,
	}
}

// ToChunkListResponse keeps the store's ordering; chunks arrive sorted by
// chunk_index.
func ToChunkListResponse(documentId string, chunks []docModel.DocumentChunk) api.ChunkListResponse {
	out := make([]api.ChunkResponse, len(chunks))
	for i, chunk := range chunks {
		out[i] = api.ChunkResponse{
			Id:              chunk.Id,
			DocumentId:      chunk.DocumentId,
			Text:            chunk.Text,
			ChunkIndex:      chunk.ChunkIndex,
			SectionType:     chunk.SectionType,
			TokenCount:      chunk.TokenCount,
			PageNumber:      chunk.PageNumber,
			ImportanceScore: chunk.ImportanceScore,
			Metadata:        chunk.Metadata,
		}
	}

	return api.ChunkListResponse{
		DocumentId: documentId,
		Count:      len(out),
		Chunks:     out,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
