package googleEmbedding

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/metrics"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/embedding"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Debug("Google Embedding model name: " + modelName)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) Dimension() int {
	return int(dimension)
}

// EmbedBatch embeds the texts batchSize at a time and returns vectors in
// input order. A batch that hits the provider rate limit is retried once.
func (c *client) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	log := logger.With("trace Id", ctx.Value(config.TRACE_ID_KEY))
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if batchSize < 1 {
		batchSize = 1
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start)) }()

	results := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		res, err := c.doCall(ctx, getContent(texts[i:end]))
		if err != nil || res == nil {
			if doRetry(err, log) {
				log.Debug("Retrying in 5 seconds")
				time.Sleep(5 * time.Second)
				res, err = c.doCall(ctx, getContent(texts[i:end]))
			}
			if err != nil {
				log.Error("Error getting Embeddings from Google", "error", err)
				return nil, err
			}
		}
		if err := checkResponse(res); err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, err
		}

		for _, r := range res.Embeddings {
			results = append(results, r.Values)
		}
	}

	return results, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
	return result, err
}
