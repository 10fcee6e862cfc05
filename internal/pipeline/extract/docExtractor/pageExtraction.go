package docExtractor

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int
	Content string
}

func (e *docExtractor) extractPDF(path string) ([]rawPage, error) {
	e.logger.Debug("extractPDF", "attempting extraction", path)
	f, err := pdf.Open(path)
	if err != nil {
		e.logger.Error("failed opening of pdf file")
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	e.logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			e.logger.Debug("extractPDF", "page value is null", i)
			continue
		}

		content, err := e.protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			e.logger.Error("Error parsing page content", "page", i, "Error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// extractDocxTxtRtf reads a .odt, .docx, .rtf or plaintext file and returns
// the content as a single page - cat gives no page boundaries to track.
func (e *docExtractor) extractDocxTxtRtf(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		e.logger.Error("Error extracting content from doc")
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}

	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

// protectExtract guards against pdf pages whose text extraction hangs.
func (e *docExtractor) protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		e.logger.Error("pageExtract", "timeout", true)
		return "", errors.New("timeout")
	}
}
