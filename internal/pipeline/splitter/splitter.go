package splitter

// SemanticSplitter splits section text into pieces bounded by token counts,
// not characters. Overlap carries trailing tokens into the next piece.
type SemanticSplitter interface {
	Split(text string, maxTokens int, overlapTokens int) ([]string, error)
}
