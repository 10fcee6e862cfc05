package docModel

import (
	"context"
	"time"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Document is the persistent record for an uploaded file. The pipeline only
// mutates the lifecycle fields; descriptive fields are set at upload time.
// Status only ever moves pending -> processing -> completed|failed.
type Document struct {
	Id            string           `json:"id"`
	ProjectId     string           `json:"project_id"`
	Filename      string           `json:"filename"`
	FileType      string           `json:"file_type"`
	FileSizeBytes int64            `json:"file_size_bytes"`
	StoragePath   string           `json:"storage_path"`
	DocumentType  string           `json:"document_type"`
	IsPrimary     bool             `json:"is_primary"`

	ProcessingStatus ProcessingStatus `json:"processing_status"`
	ProcessingError  string           `json:"processing_error,omitempty"`
	UploadedAt       time.Time        `json:"uploaded_at"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
	DeletedAt        *time.Time       `json:"deleted_at,omitempty"`

	Metadata map[string]any `json:"metadata"`
}

// MergeMetadata merges new keys into the document metadata without dropping
// keys set earlier (e.g. upload-time flags). A full replace would lose them.
func (d *Document) MergeMetadata(fields map[string]any) {
	if d.Metadata == nil {
		d.Metadata = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		d.Metadata[k] = v
	}
}

// Section is one named run of extracted text items. Sections are kept in a
// slice because their extraction order must survive into chunk ordering.
type Section struct {
	Name  string   `json:"name"`
	Texts []string `json:"texts"`
}

type Table struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// ExtractedContent is the ephemeral output of an Extractor, consumed once by
// the pipeline. Empty sections may appear here; chunking skips them.
type ExtractedContent struct {
	Sections  []Section
	Tables    []Table
	FullText  string
	HasTables bool
}

// Chunk is a bounded span of document text before it is embedded. ChunkIndex
// is dense and zero-based across the whole document: all section chunks in
// section order, then all table chunks in table order.
type Chunk struct {
	Text            string         `json:"text"`
	ChunkIndex      int            `json:"chunk_index"`
	SectionType     string         `json:"section_type"`
	TokenCount      int            `json:"token_count"`
	Metadata        map[string]any `json:"metadata"`
	PageNumber      int            `json:"page_number,omitempty"`
	ImportanceScore float64        `json:"importance_score"`
}

// DocumentChunk is the persisted form of a Chunk. Immutable once written;
// deleting the parent Document cascades to its chunks.
type DocumentChunk struct {
	Id         string `json:"chunk_id"`
	DocumentId string `json:"document_id"`
	Chunk
	EmbeddingDimension int `json:"embedding_dimension"`
}

type DocumentStore interface {
	GetDocument(ctx context.Context, documentId string) (Document, bool)
	SaveDocument(ctx context.Context, document Document) error
	DeleteDocument(ctx context.Context, documentId string)
}

// ChunkStore persists one batch of chunks with their vectors. UpsertBatch is
// one logical unit per run: the orchestrator writes all chunks before it
// flips the document status, so a crash in between leaves the document in
// processing, never completed with missing chunks.
type ChunkStore interface {
	EnsureCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []DocumentChunk, vectors [][]float32) error
	ListByDocument(ctx context.Context, collectionName string, documentId string, limit int) ([]DocumentChunk, error)
	DeleteByDocument(ctx context.Context, collectionName string, documentId string) error
}
