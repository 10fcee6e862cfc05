package assemble

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/splitter"
)

// BuildChunks produces the globally ordered chunk sequence for one document:
// every non-empty section in extraction order, split through the semantic
// splitter, then every table as exactly one chunk. ChunkIndex is dense and
// zero-based across the whole sequence; table chunks continue the section
// counter, with their table-local position kept under the table_index
// metadata key.
func BuildChunks(content docModel.ExtractedContent, baseMetadata map[string]any, split splitter.SemanticSplitter) ([]docModel.Chunk, error) {
	chunks, err := chunkSections(content.Sections, baseMetadata, split)
	if err != nil {
		return nil, err
	}

	tableChunks := chunkTables(content.Tables, baseMetadata)
	for i := range tableChunks {
		tableChunks[i].ChunkIndex = len(chunks) + i
	}

	return append(chunks, tableChunks...), nil
}

func chunkSections(sections []docModel.Section, baseMetadata map[string]any, split splitter.SemanticSplitter) ([]docModel.Chunk, error) {
	var allChunks []docModel.Chunk
	globalIndex := 0

	for _, section := range sections {
		if len(section.Texts) == 0 {
			continue
		}

		sectionText := strings.Join(section.Texts, "\n\n")
		if strings.TrimSpace(sectionText) == "" {
			continue
		}

		pieces, err := split.Split(sectionText, config.ChunkMaxTokens, config.ChunkOverlapTokens)
		if err != nil {
			return nil, fmt.Errorf("splitting section %q failed: %w", section.Name, err)
		}

		for localIndex, piece := range pieces {
			metadata := mergeMetadata(baseMetadata, map[string]any{
				"section_type":            section.Name,
				"local_chunk_index":       localIndex,
				"total_chunks_in_section": len(pieces),
			})

			allChunks = append(allChunks, docModel.Chunk{
				Text:            piece,
				ChunkIndex:      globalIndex,
				SectionType:     section.Name,
				TokenCount:      EstimateTokens(piece),
				Metadata:        metadata,
				ImportanceScore: 1.0,
			})
			globalIndex++
		}
	}

	return allChunks, nil
}

// chunkTables maps each table to one chunk. Indices assigned here are local
// to the table pass; BuildChunks re-numbers them onto the global counter.
func chunkTables(tables []docModel.Table, baseMetadata map[string]any) []docModel.Chunk {
	var tableChunks []docModel.Chunk

	for idx, table := range tables {
		metadata := mergeMetadata(baseMetadata, map[string]any{
			"section_type":   "table",
			"table_index":    idx,
			"table_metadata": table.Metadata,
		})

		tableChunks = append(tableChunks, docModel.Chunk{
			Text:            table.Text,
			ChunkIndex:      idx,
			SectionType:     "table",
			TokenCount:      EstimateTokens(table.Text),
			Metadata:        metadata,
			ImportanceScore: 1.0,
		})
	}

	return tableChunks
}

// EstimateTokens approximates a token count as int(words * 1.33). It is a
// word-count heuristic, not a tokenizer-exact count; callers batching on it
// should treat it as an estimate.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.33)
}

func mergeMetadata(base map[string]any, local map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(local))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range local {
		merged[k] = v
	}
	return merged
}
