package adapter

import (
	"testing"

	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
)

func TestToPipelineResult_GatedOnJobStatus(t *testing.T) {
	payload := jobModel.JobPayload{
		DocumentId:    "doc-1",
		ChunksCreated: 3,
		Domains:       []string{"software"},
		HasTables:     true,
	}

	tests := []struct {
		name       string
		status     jobModel.JobStatus
		wantResult bool
	}{
		{"Queued", jobModel.JobStatusQueued, false},
		{"Running", jobModel.JobStatusRunning, false},
		{"Error", jobModel.JobStatusError, false},
		{"Complete", jobModel.JobStatusComplete, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := ToPipelineResult(jobModel.Job{Status: tc.status, JobPayload: payload})
			if (result != nil) != tc.wantResult {
				t.Fatalf("Status %s: result presence = %v, want %v", tc.status, result != nil, tc.wantResult)
			}
			if result != nil && (result.DocumentId != "doc-1" || result.ChunksCreated != 3 || !result.HasTables) {
				t.Errorf("Result fields mismatch: %+v", result)
			}
		})
	}
}

func TestToPipelineResult_EmptyDocumentStillReported(t *testing.T) {
	// A completed run over an empty document produced no chunks, but the
	// status API must still show that the run finished with a result.
	job := jobModel.Job{
		Status:     jobModel.JobStatusComplete,
		JobPayload: jobModel.JobPayload{DocumentId: "doc-empty"},
	}

	result := ToPipelineResult(job)
	if result == nil {
		t.Fatal("Completed run must carry a result even with zero chunks")
	}
	if result.ChunksCreated != 0 || result.DocumentId != "doc-empty" {
		t.Errorf("Unexpected result: %+v", result)
	}

	response := ToAPIResponse(job)
	if response.Result.PipelineResult == nil {
		t.Error("JobResponse should surface the empty-document result")
	}
}

func TestToChunkListResponse(t *testing.T) {
	chunks := []docModel.DocumentChunk{
		{
			Id:         "p-0",
			DocumentId: "doc-1",
			Chunk: docModel.Chunk{
				Text:        "intro text",
				ChunkIndex:  0,
				SectionType: "introduction",
				TokenCount:  2,
				Metadata:    map[string]any{"is_primary": true},
			},
		},
		{
			Id:         "p-1",
			DocumentId: "doc-1",
			Chunk: docModel.Chunk{
				Text:        "a | b",
				ChunkIndex:  1,
				SectionType: "table",
				PageNumber:  3,
			},
		},
	}

	response := ToChunkListResponse("doc-1", chunks)
	if response.DocumentId != "doc-1" || response.Count != 2 {
		t.Fatalf("Envelope mismatch: %+v", response)
	}
	if response.Chunks[0].Id != "p-0" || response.Chunks[0].SectionType != "introduction" {
		t.Errorf("First chunk mismatch: %+v", response.Chunks[0])
	}
	if response.Chunks[1].ChunkIndex != 1 || response.Chunks[1].PageNumber != 3 {
		t.Errorf("Second chunk mismatch: %+v", response.Chunks[1])
	}
	if response.Chunks[0].Metadata["is_primary"] != true {
		t.Errorf("Chunk metadata lost: %v", response.Chunks[0].Metadata)
	}

	empty := ToChunkListResponse("doc-2", nil)
	if empty.Count != 0 || len(empty.Chunks) != 0 {
		t.Errorf("Empty listing should have zero count, got %+v", empty)
	}
}
