package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/data/redisStore"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, document docModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document Id", document.Id)
	log.Debug("saving document", "status", document.ProcessingStatus)
	data, err := json.Marshal(document)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, document.Id, data, config.RedisDocumentStoreTTL)
	if err == nil {
		log.Debug("Saved document to Redis")
	}
	return err
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, documentId string) (docModel.Document, bool) {
	var document docModel.Document
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document Id", documentId)
	val, err := s.store.Get(ctx, documentId)
	if s.store.IsNil(err) {
		return document, false
	} else if err != nil {
		return document, false
	}

	if err = json.Unmarshal([]byte(val), &document); err != nil {
		return document, false
	}

	log.Debug("Document found in Redis")
	return document, true
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, documentId string) {
	if err := s.store.Del(ctx, documentId); err != nil {
		s.logger.Error("Error deleting document from Redis", "documentId", documentId)
		return
	}
	s.logger.Debug("Document deleted from Redis", "documentId:", documentId)
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
