package chunking

import (
	"fmt"
	"log/slog"
	"strings"

	"finrag/internal/token"
)

// SheetSeparator delimits pre-rendered sheets in spreadsheet text produced
// by the document loader.
const SheetSeparator = "\n\n---\n\n"

// DefaultPreviewRows bounds the per-sheet markdown preview.
const DefaultPreviewRows = 25

// Sheet is one already-extracted spreadsheet tab: a name plus rows of cell
// values rendered as strings.
type Sheet struct {
	Name string
	Rows [][]string
}

// ExcelChunker emits one chunk per spreadsheet sheet. It works either on
// pre-rendered markdown text (sheets separated by SheetSeparator) or on
// extracted Sheet values when richer per-sheet metadata is wanted.
type ExcelChunker struct {
	previewRows int
	estimator   *token.Estimator
}

func NewExcelChunker(previewRows int, estimator *token.Estimator) *ExcelChunker {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	return &ExcelChunker{previewRows: previewRows, estimator: estimator}
}

func (c *ExcelChunker) Chunk(text string, meta ChunkMetadata) []Chunk {
	sheets := strings.Split(text, SheetSeparator)
	chunks := make([]Chunk, 0, len(sheets))

	for i, sheetText := range sheets {
		sheetText = strings.TrimSpace(sheetText)
		if sheetText == "" {
			continue
		}

		sheetMeta := meta
		sheetMeta.SectionName = fmt.Sprintf("sheet_%d", i)

		chunks = append(chunks, Chunk{
			Text:       sheetText,
			Metadata:   sheetMeta,
			TokenCount: c.estimator.Estimate(sheetText),
		})
	}

	chunks = number(chunks)

	slog.Debug("excel chunker finished", "chunks", len(chunks))
	return chunks
}

// ChunkSheets builds one chunk per extracted sheet with a row/column header
// and a markdown preview of the first previewRows rows.
func (c *ExcelChunker) ChunkSheets(sheets []Sheet, meta ChunkMetadata) []Chunk {
	chunks := make([]Chunk, 0, len(sheets))

	for _, sheet := range sheets {
		cols := 0
		if len(sheet.Rows) > 0 {
			cols = len(sheet.Rows[0])
		}

		var b strings.Builder
		fmt.Fprintf(&b, "## Sheet: %s (%d rows, %d cols)\n\n", sheet.Name, len(sheet.Rows), cols)
		b.WriteString(markdownPreview(sheet.Rows, c.previewRows))

		text := b.String()
		sheetMeta := meta
		sheetMeta.SectionName = sheet.Name

		chunks = append(chunks, Chunk{
			Text:       text,
			Metadata:   sheetMeta,
			TokenCount: c.estimator.Estimate(text),
		})
	}

	return number(chunks)
}

func markdownPreview(rows [][]string, limit int) string {
	if len(rows) == 0 {
		return "[empty sheet]"
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			cells := make([]string, len(row))
			for j := range cells {
				cells[j] = "---"
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
