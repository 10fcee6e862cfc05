package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/notify"
	"github.com/akolanti/DocPipeAPI/internal/pipeline"
)

type fixture struct {
	documents *MockDocumentStore
	chunks    *MockChunkStore
	extractor *MockExtractor
	embedder  *MockEmbedder
	conn      *recordingConn
	service   pipeline.Service
}

func newFixture(seed ...docModel.Document) *fixture {
	f := &fixture{
		documents: NewMockDocumentStore(seed...),
		chunks:    &MockChunkStore{},
		extractor: &MockExtractor{},
		embedder:  &MockEmbedder{},
		conn:      &recordingConn{},
	}
	registry := notify.NewRegistry()
	for _, d := range seed {
		registry.Join(d.Id, f.conn)
	}
	f.service = pipeline.NewService(
		f.documents,
		f.chunks,
		f.extractor,
		&MockClassifier{},
		&MockSplitter{},
		f.embedder,
		notify.NewPublisher(registry),
	)
	return f
}

func pendingDocument(id string) docModel.Document {
	return docModel.Document{
		Id:               id,
		ProjectId:        "proj-1",
		Filename:         "patent.pdf",
		StoragePath:      "/tmp/patent.pdf",
		IsPrimary:        true,
		ProcessingStatus: docModel.StatusPending,
		Metadata:         map[string]any{"is_primary": true},
	}
}

func terminalEvents(events []notify.Event) []notify.Event {
	var terminal []notify.Event
	for _, e := range events {
		if e.Stage == notify.StageComplete || e.Stage == notify.StageFailed {
			terminal = append(terminal, e)
		}
	}
	return terminal
}

func TestRun_SuccessFullFlow(t *testing.T) {
	f := newFixture(pendingDocument("doc-1"))

	result, err := f.service.Run(context.Background(), "doc-1", "proj-1", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != "success" || result.ChunksCreated != 1 {
		t.Errorf("Unexpected result: %+v", result)
	}

	document, _ := f.documents.GetDocument(context.Background(), "doc-1")
	if document.ProcessingStatus != docModel.StatusCompleted {
		t.Errorf("Status should be completed, got %s", document.ProcessingStatus)
	}
	if document.ProcessedAt == nil {
		t.Error("ProcessedAt should be set on completion")
	}

	// Completion metadata merges without dropping upload-time keys
	if document.Metadata["is_primary"] != true {
		t.Error("Upload-time metadata key was lost by the completion merge")
	}
	if document.Metadata["total_chunks"] != 1 {
		t.Errorf("total_chunks should be 1, got %v", document.Metadata["total_chunks"])
	}
	if document.Metadata["embedding_model"] != "mock-embedding-001" {
		t.Errorf("embedding_model mismatch: %v", document.Metadata["embedding_model"])
	}
	if document.Metadata["embedding_dimension"] != 3 {
		t.Errorf("embedding_dimension mismatch: %v", document.Metadata["embedding_dimension"])
	}

	events := f.conn.all()
	wantStages := []notify.Stage{
		notify.StageExtracting, notify.StageClassifying, notify.StageChunking,
		notify.StageEmbedding, notify.StageStoring, notify.StageComplete,
	}
	wantProgress := []int{
		config.ProgressExtracting, config.ProgressClassifying, config.ProgressChunking,
		config.ProgressEmbedding, config.ProgressStoring, config.ProgressComplete,
	}
	if len(events) != len(wantStages) {
		t.Fatalf("Expected %d events, got %d: %v", len(wantStages), len(events), events)
	}
	for i, e := range events {
		if e.Stage != wantStages[i] || e.Progress != wantProgress[i] {
			t.Errorf("Event %d: got {%s %d}, want {%s %d}", i, e.Stage, e.Progress, wantStages[i], wantProgress[i])
		}
		if e.Error != nil {
			t.Errorf("Event %d should carry no error, got %q", i, *e.Error)
		}
	}
	if len(terminalEvents(events)) != 1 {
		t.Error("A run must publish exactly one terminal event")
	}
}

func TestRun_VectorsPairWithChunksInOrder(t *testing.T) {
	f := newFixture(pendingDocument("doc-1"))
	f.extractor.OnExtract = func(ctx context.Context, path string) (docModel.ExtractedContent, error) {
		return docModel.ExtractedContent{
			Sections: []docModel.Section{
				{Name: "introduction", Texts: []string{"first"}},
				{Name: "claims", Texts: []string{"second"}},
			},
			FullText: "first\n\nsecond",
		}, nil
	}

	if _, err := f.service.Run(context.Background(), "doc-1", "proj-1", true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(f.embedder.SeenTexts) != 2 {
		t.Fatalf("Embedder should see 2 chunk texts, got %d", len(f.embedder.SeenTexts))
	}
	if f.embedder.SeenTexts[0] != "first" || f.embedder.SeenTexts[1] != "second" {
		t.Errorf("Embedder input must follow chunk order, got %v", f.embedder.SeenTexts)
	}

	if len(f.chunks.StoredChunks) != 2 || len(f.chunks.StoredVectors) != 2 {
		t.Fatalf("Stored %d chunks with %d vectors, want 2 and 2",
			len(f.chunks.StoredChunks), len(f.chunks.StoredVectors))
	}
	for i, chunk := range f.chunks.StoredChunks {
		if chunk.ChunkIndex != i {
			t.Errorf("Stored chunk %d has index %d", i, chunk.ChunkIndex)
		}
		if chunk.DocumentId != "doc-1" {
			t.Errorf("Stored chunk %d has wrong document id %s", i, chunk.DocumentId)
		}
		if chunk.EmbeddingDimension != 3 {
			t.Errorf("Stored chunk %d has dimension %d", i, chunk.EmbeddingDimension)
		}
	}
}

func TestRun_RerunReplacesPreviousChunks(t *testing.T) {
	f := newFixture(pendingDocument("doc-1"))

	if _, err := f.service.Run(context.Background(), "doc-1", "proj-1", true); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Second run extracts differently; only its chunks may survive.
	f.extractor.OnExtract = func(ctx context.Context, path string) (docModel.ExtractedContent, error) {
		return docModel.ExtractedContent{
			Sections: []docModel.Section{
				{Name: "introduction", Texts: []string{"revised intro"}},
				{Name: "claims", Texts: []string{"revised claims"}},
			},
			FullText: "revised intro\n\nrevised claims",
		}, nil
	}
	if _, err := f.service.Run(context.Background(), "doc-1", "proj-1", true); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if len(f.chunks.DeletedDocs) != 2 || f.chunks.DeletedDocs[1] != "doc-1" {
		t.Errorf("Each run must clear the previous generation, got deletes %v", f.chunks.DeletedDocs)
	}
	if len(f.chunks.StoredChunks) != 2 {
		t.Fatalf("Store should hold only the latest generation, got %d chunks", len(f.chunks.StoredChunks))
	}

	// One generation means indices are unique and dense again
	for i, chunk := range f.chunks.StoredChunks {
		if chunk.ChunkIndex != i {
			t.Errorf("Chunk %d has index %d after re-run", i, chunk.ChunkIndex)
		}
	}
	if f.chunks.StoredChunks[0].Text != "revised intro" || f.chunks.StoredChunks[1].Text != "revised claims" {
		t.Errorf("Stored chunks are not the second run's output: %+v", f.chunks.StoredChunks)
	}
}

func TestRun_FailureScenarios(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(f *fixture)
		expectedErr error
	}{
		{
			name: "Extraction_Failure",
			setup: func(f *fixture) {
				f.extractor.OnExtract = func(ctx context.Context, path string) (docModel.ExtractedContent, error) {
					return docModel.ExtractedContent{}, errors.New("corrupt pdf")
				}
			},
			expectedErr: pipeline.ErrExtraction,
		},
		{
			name: "Embedding_Failure",
			setup: func(f *fixture) {
				f.embedder.OnEmbedBatch = func(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedErr: pipeline.ErrEmbedding,
		},
		{
			name: "Store_Failure",
			setup: func(f *fixture) {
				f.chunks.OnUpsertBatch = func(ctx context.Context, name string, chunks []docModel.DocumentChunk, vectors [][]float32) error {
					return errors.New("qdrant unreachable")
				}
			},
			expectedErr: pipeline.ErrStore,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(pendingDocument("doc-1"))
			tc.setup(f)

			_, err := f.service.Run(context.Background(), "doc-1", "proj-1", true)
			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("Expected %v, got %v", tc.expectedErr, err)
			}

			document, _ := f.documents.GetDocument(context.Background(), "doc-1")
			if document.ProcessingStatus != docModel.StatusFailed {
				t.Errorf("Status should be failed, got %s", document.ProcessingStatus)
			}
			if document.ProcessingError == "" {
				t.Error("ProcessingError should carry the failure message")
			}

			events := f.conn.all()
			terminal := terminalEvents(events)
			if len(terminal) != 1 {
				t.Fatalf("Expected exactly one terminal event, got %d", len(terminal))
			}
			if terminal[0].Stage != notify.StageFailed || terminal[0].Progress != 0 {
				t.Errorf("Terminal event should be {failed, 0}, got {%s, %d}",
					terminal[0].Stage, terminal[0].Progress)
			}
			if terminal[0].Error == nil {
				t.Error("Failed event must carry the error message")
			}
		})
	}
}

func TestRun_DocumentNotFound(t *testing.T) {
	f := newFixture() //empty store

	_, err := f.service.Run(context.Background(), "ghost", "proj-1", false)
	if !errors.Is(err, pipeline.ErrDocumentNotFound) {
		t.Fatalf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func TestRun_FailedStatusPersistErrorDoesNotMaskCause(t *testing.T) {
	f := newFixture(pendingDocument("doc-1"))
	f.embedder.OnEmbedBatch = func(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
		return nil, errors.New("api limit")
	}
	saveCalls := 0
	f.documents.OnSaveDocument = func(ctx context.Context, document docModel.Document) error {
		saveCalls++
		if document.ProcessingStatus == docModel.StatusFailed {
			return errors.New("redis down")
		}
		return nil
	}

	_, err := f.service.Run(context.Background(), "doc-1", "proj-1", true)
	if !errors.Is(err, pipeline.ErrEmbedding) {
		t.Errorf("The original failure must come back even when the failed-status save errors, got %v", err)
	}
	if saveCalls < 2 {
		t.Errorf("Expected the processing and failed status saves, got %d", saveCalls)
	}
}
