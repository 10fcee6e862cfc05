package openaiEmbedding

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/metrics"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/embedding"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	openAi openai.Client
	model  string
}

// GetOpenAIEmbeddingClient is the alternative Embedder, selected when
// config.EmbeddingProvider is "openai".
func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key is empty")
			return
		}
		embeddingClient = &client{
			openAi: openai.NewClient(option.WithAPIKey(apikey)),
			model:  modelName,
		}
		logger.Info("OpenAI Embedding client created", "model", modelName)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) Dimension() int {
	return int(config.EmbeddingOutputDimensionality)
}

// EmbedBatch embeds the texts batchSize at a time, preserving input order.
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

		res, err := c.openAi.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts[i:end]},
			Model:      openai.EmbeddingModel(c.model),
			Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
		})
		if err != nil {
			log.Error("Error getting Embeddings from OpenAI", "error", err)
			return nil, err
		}

		for _, data := range res.Data {
			vector := make([]float32, len(data.Embedding))
			for j, v := range data.Embedding {
				vector[j] = float32(v)
			}
			results = append(results, vector)
		}
	}

	return results, nil
}
