package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/metrics"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/assemble"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
	"github.com/google/uuid"
)

func (s *service) executeExtractStep(ctx context.Context, log *logger_i.Logger, path string) (docModel.ExtractedContent, error) {
	log.Debug("Run", "Current Stage", "extracting")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extract", time.Since(start)) }()

	return s.extractor.Extract(ctx, path)
}

func (s *service) executeClassifyStep(log *logger_i.Logger, fullText string) (domains []string, terms []string, cpcHints []string) {
	log.Debug("Run", "Current Stage", "classifying")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("classify", time.Since(start)) }()

	domains = s.classifier.Classify(fullText)
	terms = s.classifier.ExtractTerms(fullText)
	cpcHints = s.classifier.CPCHints(domains)
	return domains, terms, cpcHints
}

func (s *service) executeChunkStep(log *logger_i.Logger, content docModel.ExtractedContent, baseMetadata map[string]any) ([]docModel.Chunk, error) {
	log.Debug("Run", "Current Stage", "chunking")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunk", time.Since(start)) }()

	chunks, err := assemble.BuildChunks(content, baseMetadata, s.splitter)
	if err != nil {
		return nil, fmt.Errorf("chunk assembly: %w", err)
	}
	log.Debug("Chunk assembly done", "chunks", len(chunks))
	return chunks, nil
}

func (s *service) executeEmbedStep(ctx context.Context, log *logger_i.Logger, chunks []docModel.Chunk) ([][]float32, error) {
	log.Debug("Run", "Current Stage", "embedding")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embed", time.Since(start)) }()

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts, config.EmbeddingBatchSize)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return vectors, nil
}

func (s *service) executeStoreStep(ctx context.Context, log *logger_i.Logger, documentId string, chunks []docModel.Chunk, vectors [][]float32) error {
	log.Debug("Run", "Current Stage", "storing")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("store", time.Since(start)) }()

	documentChunks := make([]docModel.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		documentChunks[i] = docModel.DocumentChunk{
			Id:                 uuid.New().String(),
			DocumentId:         documentId,
			Chunk:              chunk,
			EmbeddingDimension: s.embedder.Dimension(),
		}
	}

	if err := s.chunks.EnsureCollection(ctx, config.ChunkCollectionName); err != nil {
		return err
	}

	// Every run writes points under fresh ids, so a re-run must clear the
	// previous generation first or chunk_index values would duplicate.
	if err := s.chunks.DeleteByDocument(ctx, config.ChunkCollectionName, documentId); err != nil {
		return err
	}

	return s.chunks.UpsertBatch(ctx, config.ChunkCollectionName, documentChunks, vectors)
}
