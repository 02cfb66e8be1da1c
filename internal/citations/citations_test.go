package citations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/internal/chunking"
	"finrag/internal/vectorstore"
)

func sources() []vectorstore.SearchResult {
	return []vectorstore.SearchResult{
		{
			Text:  "Net sales increased 6% driven by iPhone.",
			Score: 0.91,
			Metadata: chunking.ChunkMetadata{
				SourceFilename: "aapl-10k.pdf",
				Ticker:         "AAPL",
				DocType:        chunking.DocTypeSECFiling,
				SectionName:    "Item 7. MD&A",
			},
		},
		{
			Text:     "Gross margin was 46.2 percent.",
			Metadata: chunking.ChunkMetadata{SourceFilename: "aapl-q4.txt", Ticker: "AAPL"},
		},
		{
			Text:     "Services revenue set an all-time record.",
			Metadata: chunking.ChunkMetadata{Ticker: "AAPL"},
		},
	}
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []int
	}{
		{"single", "Revenue grew 6% [1].", []int{1}},
		{"list", "Margins expanded [1,3].", []int{1, 3}},
		{"range", "Several factors [2-4] contributed.", []int{2, 3, 4}},
		{"mixed and deduped", "See [1] and [1,2] plus [2-3].", []int{1, 2, 3}},
		{"none", "No citations here.", []int{}},
		{"ignores non-numeric brackets", "An array [a,b] and [1].", []int{1}},
		{"inverted range dropped", "Bad range [5-2] but [1] holds.", []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIndices(tt.answer))
		})
	}
}

func TestExtract(t *testing.T) {
	answer := "iPhone drove growth [1] while margins held up [2]."
	cits := Extract(answer, sources())

	require.Len(t, cits, 2)
	assert.Equal(t, 1, cits[0].Index)
	assert.Equal(t, "aapl-10k.pdf", cits[0].SourceFilename)
	assert.Equal(t, "Item 7. MD&A", cits[0].SectionName)
	assert.Equal(t, "sec_filing", cits[0].DocType)
	assert.Equal(t, "Net sales increased 6% driven by iPhone.", cits[0].Snippet)
	assert.Equal(t, float32(0.91), cits[0].Score)
	assert.Equal(t, 2, cits[1].Index)
	assert.Zero(t, cits[1].Score)
}

func TestExtract_OutOfRangeDropped(t *testing.T) {
	answer := "Claims [0], [2] and [7]."
	cits := Extract(answer, sources())

	require.Len(t, cits, 1)
	assert.Equal(t, 2, cits[0].Index)
}

func TestExtract_NoCitations(t *testing.T) {
	assert.Empty(t, Extract("Nothing is cited.", sources()))
}

func TestExtract_SnippetTruncated(t *testing.T) {
	long := strings.Repeat("x", 500)
	cits := Extract("[1]", []vectorstore.SearchResult{{Text: long}})

	require.Len(t, cits, 1)
	assert.Len(t, cits[0].Snippet, maxSnippetLen+3)
	assert.True(t, strings.HasSuffix(cits[0].Snippet, "..."))
}

func TestFormat(t *testing.T) {
	cits := Extract("[1,2]", sources())
	out := Format(cits)

	assert.Contains(t, out, "**Sources:**")
	assert.Contains(t, out, "- [1] aapl-10k.pdf (Item 7. MD&A)")
	assert.Contains(t, out, "- [2] aapl-q4.txt")
}

func TestFormat_Empty(t *testing.T) {
	assert.Empty(t, Format(nil))
}

func TestLabel_FallsBackToTicker(t *testing.T) {
	cits := Extract("[3]", sources())
	require.Len(t, cits, 1)
	assert.Contains(t, Format(cits), "- [3] AAPL")
}
