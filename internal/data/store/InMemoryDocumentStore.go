package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
)

// InMemoryDocumentStore is the fallback when Redis is offline; also handy in
// tests. Same contract, no persistence across restarts.
type InMemoryDocumentStore struct {
	docMutex *sync.RWMutex
	docMap   map[string]docModel.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docMutex: new(sync.RWMutex),
		docMap:   make(map[string]docModel.Document),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, document docModel.Document) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	store.docMap[document.Id] = document
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, documentId string) (docModel.Document, bool) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	result, found := store.docMap[documentId]
	return result, found
}

func (store *InMemoryDocumentStore) DeleteDocument(ctx context.Context, documentId string) {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	delete(store.docMap, documentId)
}
