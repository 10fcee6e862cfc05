package qdrantDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	if err = createCollection(context.Background(), client, config.ChunkCollectionName); err != nil {
		logger.Error("could not create collection: ", "collectionName", config.ChunkCollectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

// UpsertBatch writes one point per (chunk, vector) pair with Wait set, so
// the call returns only after the batch is durable. The orchestrator relies
// on that: chunks land before the document status flips to completed.
func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []docModel.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		metadataJson, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("encoding chunk metadata: %w", err)
		}

		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id":         chunk.DocumentId,
				"text":                chunk.Text,
				"chunk_index":         chunk.ChunkIndex,
				"section_type":        chunk.SectionType,
				"token_count":         chunk.TokenCount,
				"page_number":         chunk.PageNumber,
				"importance_score":    chunk.ImportanceScore,
				"embedding_dimension": chunk.EmbeddingDimension,
				"metadata":            string(metadataJson),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

// ListByDocument returns up to limit chunks of one document, ordered by
// chunk_index. Scroll returns points in id order, so the stored index is
// what restores document order.
func (db *ClientHolder) ListByDocument(ctx context.Context, collectionName string, documentId string, limit int) ([]docModel.DocumentChunk, error) {
	if limit < 1 {
		limit = config.ChunkListDefaultLimit
	}

	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
			},
		},
		Limit:       qdrant.PtrOf(uint32(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant scroll failed: %w", err)
	}

	chunks := make([]docModel.DocumentChunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, chunkFromPayload(point.Id.GetUuid(), point.Payload))
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
	return chunks, nil
}

func chunkFromPayload(id string, payload map[string]*qdrant.Value) docModel.DocumentChunk {
	var metadata map[string]any
	if raw := payload["metadata"].GetStringValue(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			logger.Warn("Dropping unreadable chunk metadata", "chunkId", id, "error", err)
			metadata = nil
		}
	}

	return docModel.DocumentChunk{
		Id:         id,
		DocumentId: payload["document_id"].GetStringValue(),
		Chunk: docModel.Chunk{
			Text:            payload["text"].GetStringValue(),
			ChunkIndex:      int(payload["chunk_index"].GetIntegerValue()),
			SectionType:     payload["section_type"].GetStringValue(),
			TokenCount:      int(payload["token_count"].GetIntegerValue()),
			PageNumber:      int(payload["page_number"].GetIntegerValue()),
			ImportanceScore: payload["importance_score"].GetDoubleValue(),
			Metadata:        metadata,
		},
		EmbeddingDimension: int(payload["embedding_dimension"].GetIntegerValue()),
	}
}

// DeleteByDocument removes every chunk of one document; used by the soft
// delete cascade and to clear the previous generation before a re-run
// writes fresh points.
func (db *ClientHolder) DeleteByDocument(ctx context.Context, collectionName string, documentId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension, //TODO:this shouldnt be hardcoded
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
