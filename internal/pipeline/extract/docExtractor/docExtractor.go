package docExtractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/extract"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".odt":  {},
	".rtf":  {},
	".txt":  {},
}

type docExtractor struct {
	logger *logger_i.Logger
}

func NewDocExtractor() extract.Extractor {
	return &docExtractor{
		logger: logger_i.NewLogger("DocExtractor"),
	}
}

func (e *docExtractor) SupportsFileType(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (e *docExtractor) Extract(ctx context.Context, path string) (docModel.ExtractedContent, error) {
	if err := ctx.Err(); err != nil {
		return docModel.ExtractedContent{}, err
	}
	if !e.SupportsFileType(path) {
		return docModel.ExtractedContent{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	var pages []rawPage
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, err = e.extractPDF(path)
	} else {
		pages, err = e.extractDocxTxtRtf(path)
	}
	if err != nil {
		return docModel.ExtractedContent{}, err
	}

	e.logger.Debug("Extraction done", "path", path, "pages", len(pages))
	return e.organizePages(pages), nil
}

// organizePages walks extracted lines and groups them into ordered sections
// and table blocks. A short title-looking line starts a new section; runs of
// column-shaped lines become one table each; everything else lands in the
// current section. The leading "introduction" section may stay empty, which
// is fine - chunking skips empty sections but the extraction keeps them.
func (e *docExtractor) organizePages(pages []rawPage) docModel.ExtractedContent {
	sections := []docModel.Section{{Name: "introduction"}}
	current := 0
	var tables []docModel.Table
	var allText []string

	appendText := func(text string) {
		sections[current].Texts = append(sections[current].Texts, text)
		allText = append(allText, text)
	}

	for _, page := range pages {
		lines := strings.Split(page.Content, "\n")

		var paragraph []string
		var tableBlock []string

		flushParagraph := func() {
			if len(paragraph) > 0 {
				appendText(strings.Join(paragraph, " "))
				paragraph = nil
			}
		}
		flushTable := func() {
			if len(tableBlock) > 0 {
				text := strings.Join(tableBlock, "\n")
				tables = append(tables, docModel.Table{
					Text: text,
					Metadata: map[string]any{
						"page_number": page.Number,
						"row_count":   len(tableBlock),
					},
				})
				allText = append(allText, text)
				tableBlock = nil
			}
		}

		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
				flushParagraph()
				flushTable()

			case isTableRow(line):
				flushParagraph()
				tableBlock = append(tableBlock, trimmed)

			case isHeading(trimmed):
				flushParagraph()
				flushTable()
				sections = append(sections, docModel.Section{Name: sectionName(trimmed)})
				current = len(sections) - 1
				allText = append(allText, trimmed)

			default:
				flushTable()
				paragraph = append(paragraph, trimmed)
			}
		}
		flushParagraph()
		flushTable()
	}

	return docModel.ExtractedContent{
		Sections:  sections,
		Tables:    tables,
		FullText:  strings.Join(allText, "\n\n"),
		HasTables: len(tables) > 0,
	}
}

// isHeading flags short title-like lines: no terminal punctuation, few
// words, first rune uppercase.
func isHeading(line string) bool {
	if len(line) == 0 || len(line) > 80 {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") || strings.HasSuffix(line, ";") {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	first := []rune(line)[0]
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}

// isTableRow flags lines shaped like columns: tabs, or 3+ cells separated
// by 2-space-or-wider gaps, or pipe-delimited rows.
func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.Count(trimmed, "\t") >= 2 {
		return true
	}
	if strings.Count(trimmed, "|") >= 2 {
		return true
	}
	cells := 1
	gap := 0
	for _, r := range trimmed {
		if r == ' ' {
			gap++
		} else {
			if gap >= 2 {
				cells++
			}
			gap = 0
		}
	}
	return cells >= 3
}

func sectionName(heading string) string {
	name := strings.ToLower(heading)
	name = strings.ReplaceAll(name, " ", "_")
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}
