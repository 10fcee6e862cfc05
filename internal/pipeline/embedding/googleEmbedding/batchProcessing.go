package googleEmbedding

import (
	"errors"

	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// checkResponse rejects a nil response or one without embeddings; the
// provider can return (nil, nil) and every batch sent is non-empty.
func checkResponse(res *genai.EmbedContentResponse) error {
	if res == nil || len(res.Embeddings) == 0 {
		return errors.New("embedding response carries no embeddings")
	}
	return nil
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}
