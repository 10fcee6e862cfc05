package embedding

import "context"

// Embedder computes one vector per input text, in input order: result[i]
// always corresponds to texts[i], regardless of how the implementation
// batches the provider calls.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
	ModelName() string
	Dimension() int
}
