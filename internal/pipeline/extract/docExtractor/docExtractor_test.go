package docExtractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

func newTestExtractor() *docExtractor {
	return &docExtractor{logger: logger_i.NewLogger("test extractor")}
}

func TestSupportsFileType(t *testing.T) {
	e := newTestExtractor()

	supported := []string{"a.pdf", "b.DOCX", "c.odt", "d.rtf", "e.txt"}
	for _, path := range supported {
		if !e.SupportsFileType(path) {
			t.Errorf("%s should be supported", path)
		}
	}

	unsupported := []string{"image.png", "archive.zip", "noextension"}
	for _, path := range unsupported {
		if e.SupportsFileType(path) {
			t.Errorf("%s should not be supported", path)
		}
	}
}

func TestOrganizePages_SectionsAndTables(t *testing.T) {
	e := newTestExtractor()

	pages := []rawPage{
		{Number: 1, Content: "Some opening text before any heading.\n\nBackground Of The Invention\nThis paragraph belongs to the background\nsection and spans two lines.\n\ncol_a | col_b | col_c\n1 | 2 | 3"},
		{Number: 2, Content: "Claims\nA claim sentence."},
	}

	content := e.organizePages(pages)

	// introduction catches text before the first heading
	wantSections := []string{"introduction", "background_of_the_invention", "claims"}
	if len(content.Sections) != len(wantSections) {
		t.Fatalf("Expected %d sections, got %d: %+v", len(wantSections), len(content.Sections), content.Sections)
	}
	for i, section := range content.Sections {
		if section.Name != wantSections[i] {
			t.Errorf("Section %d named %s, want %s", i, section.Name, wantSections[i])
		}
	}

	if len(content.Sections[0].Texts) != 1 {
		t.Errorf("Introduction should hold the pre-heading paragraph, got %v", content.Sections[0].Texts)
	}
	if got := content.Sections[1].Texts[0]; got != "This paragraph belongs to the background section and spans two lines." {
		t.Errorf("Multi-line paragraph should be joined with spaces, got %q", got)
	}

	if !content.HasTables || len(content.Tables) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(content.Tables))
	}
	table := content.Tables[0]
	if table.Metadata["page_number"] != 1 || table.Metadata["row_count"] != 2 {
		t.Errorf("Table metadata wrong: %v", table.Metadata)
	}

	if content.FullText == "" {
		t.Error("FullText should concatenate everything for classification")
	}
}

func TestOrganizePages_EmptyIntroductionIsKept(t *testing.T) {
	e := newTestExtractor()

	content := e.organizePages([]rawPage{
		{Number: 1, Content: "Summary\nText right under the first heading."},
	})

	if content.Sections[0].Name != "introduction" || len(content.Sections[0].Texts) != 0 {
		t.Errorf("Leading introduction section should exist and stay empty, got %+v", content.Sections[0])
	}
	if content.Sections[1].Name != "summary" {
		t.Errorf("Second section should be summary, got %s", content.Sections[1].Name)
	}
}

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Background Of The Invention", true},
		{"1. Field of the invention", true},
		{"this is lowercase", false},
		{"A full sentence that ends with a period.", false},
		{"Way too many words to look like any reasonable document heading here now", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := isHeading(tc.line); got != tc.want {
			t.Errorf("isHeading(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestIsTableRow(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"a\tb\tc", true},
		{"a | b | c", true},
		{"cell1   cell2   cell3", true},
		{"just a normal sentence", false},
		{"two  cells", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := isTableRow(tc.line); got != tc.want {
			t.Errorf("isTableRow(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestExtract_PlainTextFile(t *testing.T) {
	e := newTestExtractor()

	path := filepath.Join(t.TempDir(), "sample.txt")
	body := "Technical Field\nA system for processing documents.\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	content, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(content.Sections) != 2 || content.Sections[1].Name != "technical_field" {
		t.Errorf("Unexpected sections: %+v", content.Sections)
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := newTestExtractor()
	if _, err := e.Extract(context.Background(), "/tmp/image.png"); err == nil {
		t.Error("Extract should refuse an unsupported extension")
	}
}
