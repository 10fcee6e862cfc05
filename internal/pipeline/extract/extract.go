package extract

import (
	"context"

	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
)

// Extractor turns a stored file into structured content. Extraction is
// CPU-bound and potentially slow, so it takes a context.
type Extractor interface {
	Extract(ctx context.Context, path string) (docModel.ExtractedContent, error)
	SupportsFileType(path string) bool
}
