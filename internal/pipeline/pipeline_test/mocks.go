package pipeline_test

import (
	"context"
	"sync"

	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/notify"
)

// MockDocumentStore implements docModel.DocumentStore
type MockDocumentStore struct {
	mu             sync.Mutex
	docs           map[string]docModel.Document
	OnSaveDocument func(ctx context.Context, document docModel.Document) error
}

func NewMockDocumentStore(seed ...docModel.Document) *MockDocumentStore {
	m := &MockDocumentStore{docs: make(map[string]docModel.Document)}
	for _, d := range seed {
		m.docs[d.Id] = d
	}
	return m
}

func (m *MockDocumentStore) GetDocument(ctx context.Context, documentId string) (docModel.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[documentId]
	return d, ok
}

func (m *MockDocumentStore) SaveDocument(ctx context.Context, document docModel.Document) error {
	if m.OnSaveDocument != nil {
		if err := m.OnSaveDocument(ctx, document); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[document.Id] = document
	return nil
}

func (m *MockDocumentStore) DeleteDocument(ctx context.Context, documentId string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, documentId)
}

// MockChunkStore implements docModel.ChunkStore and behaves like the real
// one: upserts accumulate points, deletes drop a document's points.
type MockChunkStore struct {
	OnEnsureCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []docModel.DocumentChunk, vectors [][]float32) error
	OnDeleteByDocument func(ctx context.Context, name string, documentId string) error

	StoredChunks  []docModel.DocumentChunk
	StoredVectors [][]float32
	DeletedDocs   []string
}

func (m *MockChunkStore) EnsureCollection(ctx context.Context, name string) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name)
	}
	return nil
}

func (m *MockChunkStore) UpsertBatch(ctx context.Context, name string, chunks []docModel.DocumentChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	m.StoredChunks = append(m.StoredChunks, chunks...)
	m.StoredVectors = append(m.StoredVectors, vectors...)
	return nil
}

func (m *MockChunkStore) ListByDocument(ctx context.Context, name string, documentId string, limit int) ([]docModel.DocumentChunk, error) {
	var out []docModel.DocumentChunk
	for _, chunk := range m.StoredChunks {
		if chunk.DocumentId == documentId && len(out) < limit {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, name string, documentId string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, name, documentId)
	}
	var keptChunks []docModel.DocumentChunk
	var keptVectors [][]float32
	for i, chunk := range m.StoredChunks {
		if chunk.DocumentId != documentId {
			keptChunks = append(keptChunks, chunk)
			keptVectors = append(keptVectors, m.StoredVectors[i])
		}
	}
	m.StoredChunks = keptChunks
	m.StoredVectors = keptVectors
	m.DeletedDocs = append(m.DeletedDocs, documentId)
	return nil
}

// MockExtractor implements extract.Extractor
type MockExtractor struct {
	OnExtract func(ctx context.Context, path string) (docModel.ExtractedContent, error)
}

func (m *MockExtractor) SupportsFileType(path string) bool { return true }

func (m *MockExtractor) Extract(ctx context.Context, path string) (docModel.ExtractedContent, error) {
	if m.OnExtract != nil {
		return m.OnExtract(ctx, path)
	}
	return docModel.ExtractedContent{
		Sections: []docModel.Section{
			{Name: "introduction", Texts: []string{"An algorithm runs on a processor."}},
		},
		FullText: "An algorithm runs on a processor.",
	}, nil
}

// MockClassifier implements classify.Classifier
type MockClassifier struct {
	OnClassify func(text string) []string
}

func (m *MockClassifier) Classify(text string) []string {
	if m.OnClassify != nil {
		return m.OnClassify(text)
	}
	return []string{"software"}
}

func (m *MockClassifier) ExtractTerms(text string) []string {
	return []string{"Algorithm"}
}

func (m *MockClassifier) CPCHints(domains []string) []string {
	return []string{"G06F"}
}

// MockSplitter implements splitter.SemanticSplitter; one piece per input
type MockSplitter struct {
	OnSplit func(text string, maxTokens int, overlapTokens int) ([]string, error)
}

func (m *MockSplitter) Split(text string, maxTokens int, overlapTokens int) ([]string, error) {
	if m.OnSplit != nil {
		return m.OnSplit(text, maxTokens, overlapTokens)
	}
	return []string{text}, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbedBatch func(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
	SeenTexts    []string
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	m.SeenTexts = texts
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts, batchSize)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

func (m *MockEmbedder) ModelName() string { return "mock-embedding-001" }
func (m *MockEmbedder) Dimension() int    { return 3 }

// recordingConn subscribes to the registry and keeps every event it saw
type recordingConn struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *recordingConn) Send(event notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *recordingConn) all() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Event(nil), c.events...)
}
