package pipeline

import "errors"

// Stage failures wrap one of these so the invoking scheduler can tell the
// classes apart with errors.Is. Every failure is caught exactly once at the
// Run boundary; no stage retries on its own.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrExtraction       = errors.New("extraction failed")
	ErrEmbedding        = errors.New("embedding failed")
	ErrStore            = errors.New("store failed")
)
