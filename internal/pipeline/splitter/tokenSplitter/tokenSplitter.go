package tokenSplitter

import (
	"github.com/akolanti/DocPipeAPI/internal/pipeline/splitter"
	"github.com/tmc/langchaingo/textsplitter"
)

type tokenSplitter struct{}

// NewTokenSplitter returns the default SemanticSplitter, backed by
// langchaingo's tiktoken-based splitter so size and overlap are real token
// counts rather than characters.
func NewTokenSplitter() splitter.SemanticSplitter {
	return &tokenSplitter{}
}

func (s *tokenSplitter) Split(text string, maxTokens int, overlapTokens int) ([]string, error) {
	ts := textsplitter.NewTokenSplitter(
		textsplitter.WithChunkSize(maxTokens),
		textsplitter.WithChunkOverlap(overlapTokens),
	)
	return ts.SplitText(text)
}
