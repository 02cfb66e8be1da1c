package citations

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"finrag/internal/vectorstore"
)

// maxSnippetLen bounds the source excerpt attached to a citation.
const maxSnippetLen = 200

var bracketRe = regexp.MustCompile(`\[(\d+(?:[,\-]\d+)*)\]`)

// Citation links a bracketed reference in a generated answer back to the
// retrieved chunk it cites. Index is 1-based, matching the numbering the
// model saw in its context.
type Citation struct {
	Index          int     `json:"index"`
	SourceFilename string  `json:"source_filename,omitempty"`
	Ticker         string  `json:"ticker,omitempty"`
	DocType        string  `json:"doc_type,omitempty"`
	SectionName    string  `json:"section_name,omitempty"`
	Score          float32 `json:"score,omitempty"`
	Snippet        string  `json:"snippet"`
}

// ParseIndices extracts the cited chunk numbers from an answer. It handles
// single references [1], lists [1,3] and ranges [2-4], returning a sorted,
// deduplicated slice.
func ParseIndices(answer string) []int {
	seen := make(map[int]struct{})

	for _, m := range bracketRe.FindAllStringSubmatch(answer, -1) {
		for _, part := range strings.Split(m[1], ",") {
			if lo, hi, ok := strings.Cut(part, "-"); ok {
				start, err1 := strconv.Atoi(lo)
				end, err2 := strconv.Atoi(hi)
				if err1 != nil || err2 != nil || start > end {
					continue
				}
				for n := start; n <= end; n++ {
					seen[n] = struct{}{}
				}
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				continue
			}
			seen[n] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for n := range seen {
		indices = append(indices, n)
	}
	sort.Ints(indices)
	return indices
}

// Extract resolves the citations in an answer against the retrieved chunks
// that were numbered 1..len(sources) in the prompt. References outside that
// range are dropped.
func Extract(answer string, sources []vectorstore.SearchResult) []Citation {
	out := []Citation{}
	for _, idx := range ParseIndices(answer) {
		if idx < 1 || idx > len(sources) {
			continue
		}
		src := sources[idx-1]
		out = append(out, Citation{
			Index:          idx,
			SourceFilename: src.Metadata.SourceFilename,
			Ticker:         src.Metadata.Ticker,
			DocType:        string(src.Metadata.DocType),
			SectionName:    src.Metadata.SectionName,
			Score:          src.Score,
			Snippet:        snippet(src.Text),
		})
	}
	return out
}

// Format renders citations as a markdown source list for appending to an
// answer.
func Format(cits []Citation) string {
	if len(cits) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("**Sources:**\n")
	for _, c := range cits {
		b.WriteString(fmt.Sprintf("- [%d] %s", c.Index, label(c)))
		if c.SectionName != "" {
			b.WriteString(" (" + c.SectionName + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func label(c Citation) string {
	if c.SourceFilename != "" {
		return c.SourceFilename
	}
	if c.Ticker != "" {
		return c.Ticker
	}
	return "unknown source"
}

func snippet(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxSnippetLen {
		return string(runes)
	}
	return string(runes[:maxSnippetLen]) + "..."
}
