package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/metrics"
	"github.com/akolanti/DocPipeAPI/internal/notify"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/classify"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/embedding"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/extract"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/splitter"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

// Result is what a finished run reports back to the scheduler.
type Result struct {
	Status        string   `json:"status"`
	DocumentId    string   `json:"document_id"`
	ChunksCreated int      `json:"chunks_created"`
	Domains       []string `json:"domains"`
	HasTables     bool     `json:"has_tables"`
}

// Service runs the document processing pipeline. The worker only sees this
// interface; the capabilities behind it are injected at process start.
//
// Callers must not start two concurrent runs for the same document id - the
// pipeline does not lock per document.
type Service interface {
	Run(ctx context.Context, documentId string, projectId string, isPrimary bool) (Result, error)
}

type service struct {
	documents  docModel.DocumentStore
	chunks     docModel.ChunkStore
	extractor  extract.Extractor
	classifier classify.Classifier
	splitter   splitter.SemanticSplitter
	embedder   embedding.Embedder
	publisher  *notify.Publisher
	logger     *logger_i.Logger
}

// NewService constructor
func NewService(
	documents docModel.DocumentStore,
	chunks docModel.ChunkStore,
	extractor extract.Extractor,
	classifier classify.Classifier,
	split splitter.SemanticSplitter,
	embedder embedding.Embedder,
	publisher *notify.Publisher,
) Service {
	return &service{
		documents:  documents,
		chunks:     chunks,
		extractor:  extractor,
		classifier: classifier,
		splitter:   split,
		embedder:   embedder,
		publisher:  publisher,
		logger:     logger_i.NewLogger("Pipeline Service :"),
	}
}

// Run drives one document through extract -> classify -> chunk -> embed ->
// store. Exactly one terminal event is published per run: complete on
// success, failed (progress 0) on the single top-level catch. The error is
// still returned so the scheduler can log and alert.
func (s *service) Run(ctx context.Context, documentId string, projectId string, isPrimary bool) (Result, error) {
	start := time.Now()

	result, err := s.run(ctx, documentId, projectId, isPrimary)
	if err != nil {
		metrics.CaptureJobMetrics("failed", time.Since(start))
		metrics.CountDocumentProcessed("failed")
		return Result{}, s.failRun(ctx, documentId, err)
	}

	metrics.CaptureJobMetrics("completed", time.Since(start))
	metrics.CountDocumentProcessed("completed")
	return result, nil
}

func (s *service) run(ctx context.Context, documentId string, projectId string, isPrimary bool) (Result, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	document, found := s.documents.GetDocument(ctx, documentId)
	if !found {
		return Result{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentId)
	}

	document.ProcessingStatus = docModel.StatusProcessing
	if err := s.documents.SaveDocument(ctx, document); err != nil {
		return Result{}, fmt.Errorf("%w: saving processing status: %v", ErrStore, err)
	}

	// Extraction
	s.publisher.Notify(documentId, notify.StageExtracting, config.ProgressExtracting, nil)
	content, err := s.executeExtractStep(ctx, inMethodLogger, document.StoragePath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	// Classification
	s.publisher.Notify(documentId, notify.StageClassifying, config.ProgressClassifying, nil)
	domains, terms, cpcHints := s.executeClassifyStep(inMethodLogger, content.FullText)

	// Chunk assembly
	s.publisher.Notify(documentId, notify.StageChunking, config.ProgressChunking, nil)
	baseMetadata := map[string]any{
		"document_id":       documentId,
		"project_id":        projectId,
		"is_primary":        isPrimary,
		"technical_domains": domains,
		"cpc_hints":         cpcHints,
	}
	chunks, err := s.executeChunkStep(inMethodLogger, content, baseMetadata)
	if err != nil {
		return Result{}, err
	}

	// Embedding
	s.publisher.Notify(documentId, notify.StageEmbedding, config.ProgressEmbedding, nil)
	vectors, err := s.executeEmbedStep(ctx, inMethodLogger, chunks)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	// Persistence: chunks first, status flip second, one logical unit. A
	// crash in between leaves the document processing, never completed with
	// fewer chunks than declared.
	s.publisher.Notify(documentId, notify.StageStoring, config.ProgressStoring, nil)
	if err := s.executeStoreStep(ctx, inMethodLogger, document.Id, chunks, vectors); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	document.MergeMetadata(map[string]any{
		"total_chunks":        len(chunks),
		"technical_domains":   domains,
		"technical_terms":     terms,
		"cpc_hints":           cpcHints,
		"has_tables":          content.HasTables,
		"embedding_model":     s.embedder.ModelName(),
		"embedding_dimension": s.embedder.Dimension(),
	})
	now := time.Now().UTC()
	document.ProcessingStatus = docModel.StatusCompleted
	document.ProcessedAt = &now
	document.ProcessingError = ""
	if err := s.documents.SaveDocument(ctx, document); err != nil {
		return Result{}, fmt.Errorf("%w: saving completed status: %v", ErrStore, err)
	}

	s.publisher.Notify(documentId, notify.StageComplete, config.ProgressComplete, nil)
	inMethodLogger.Info("Pipeline run completed", "chunks", len(chunks), "domains", domains)

	return Result{
		Status:        "success",
		DocumentId:    documentId,
		ChunksCreated: len(chunks),
		Domains:       domains,
		HasTables:     content.HasTables,
	}, nil
}

// failRun is the single failure path: persist failed status + error string
// where a document row exists, publish the one failed event, hand the
// original error back.
func (s *service) failRun(ctx context.Context, documentId string, runErr error) error {
	s.logger.Error("Pipeline run failed", "documentId", documentId, "error", runErr)

	if document, found := s.documents.GetDocument(ctx, documentId); found {
		document.ProcessingStatus = docModel.StatusFailed
		document.ProcessingError = runErr.Error()
		if err := s.documents.SaveDocument(ctx, document); err != nil {
			s.logger.Error("Could not persist failed status", "documentId", documentId, "error", err)
		}
	}

	s.publisher.Notify(documentId, notify.StageFailed, 0, runErr)
	return runErr
}
