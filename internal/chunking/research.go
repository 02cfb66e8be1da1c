package chunking

import (
	"log/slog"
	"regexp"
	"strings"

	"finrag/internal/scoring"
	"finrag/internal/token"
)

// DefaultMaxTokens is the per-chunk token budget shared by every strategy.
const DefaultMaxTokens = 800

// Disclosure patterns: everything from the earliest match onwards is a
// legal appendix that must never be embedded.
var disclosurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)disclosure\s+appendix`),
	regexp.MustCompile(`(?i)important\s+disclosures?`),
	regexp.MustCompile(`(?i)regulatory\s+disclosures?`),
	regexp.MustCompile(`(?i)analyst\s+certifications?`),
	regexp.MustCompile(`(?i)not\s+an?\s+offer\s+to\s+sell`),
	regexp.MustCompile(`(?i)past\s+performance`),
}

// An "Exhibit 3" / "Figure 12" / "Table 1" line opens exhibit material
// rather than narrative, so it always starts a fresh chunk.
var sectionBreakRe = regexp.MustCompile(`(?i)^(?:exhibit|figure|table)\s+\d+`)

var paragraphSplitRe = regexp.MustCompile(`\n{2,}`)

// ResearchChunker splits equity research reports on paragraph boundaries
// under a token budget. It is also the fallback strategy for generic text.
// Paged input (form-feed separated) goes through page scoring first, so a
// long report is reduced to its highest-value pages before chunking.
type ResearchChunker struct {
	maxTokens int
	maxPages  int
	estimator *token.Estimator
}

func NewResearchChunker(maxTokens int, estimator *token.Estimator) *ResearchChunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &ResearchChunker{maxTokens: maxTokens, maxPages: -1, estimator: estimator}
}

func (c *ResearchChunker) Chunk(text string, meta ChunkMetadata) []Chunk {
	text = truncateAtDisclosures(text)

	var chunks []Chunk
	if pages := strings.Split(text, "\f"); len(pages) > 1 {
		selected := scoring.SelectPages(pages, c.maxPages)
		chunks = greedyPages(selected, meta, c.maxTokens, c.estimator)
	} else {
		chunks = greedyParagraphs(text, meta, c.maxTokens, c.estimator)
	}
	chunks = number(chunks)

	slog.Debug("research chunker finished", "chunks", len(chunks), "chars", len(text))
	return chunks
}

// truncateAtDisclosures cuts the text at the earliest disclosure marker.
func truncateAtDisclosures(text string) string {
	earliest := len(text)
	for _, p := range disclosurePatterns {
		if loc := p.FindStringIndex(text); loc != nil && loc[0] < earliest {
			earliest = loc[0]
		}
	}
	return text[:earliest]
}

// greedyParagraphs accumulates paragraphs into chunks until the next
// paragraph would exceed the budget. Exhibit/Figure/Table lines force a
// boundary even under budget.
func greedyParagraphs(text string, meta ChunkMetadata, maxTokens int, est *token.Estimator) []Chunk {
	paragraphs := paragraphSplitRe.Split(text, -1)

	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:       strings.Join(current, "\n\n"),
			Metadata:   meta,
			TokenCount: currentTokens,
		})
		current = nil
		currentTokens = 0
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if sectionBreakRe.MatchString(para) {
			flush()
		}

		paraTokens := est.Estimate(para)
		if len(current) > 0 && currentTokens+paraTokens > maxTokens {
			flush()
		}

		current = append(current, para)
		currentTokens += paraTokens
	}
	flush()

	return chunks
}

// greedyPages is greedyParagraphs over selected pages, carrying the 1-based
// page numbers each chunk was built from into its metadata.
func greedyPages(pages []scoring.ScoredPage, meta ChunkMetadata, maxTokens int, est *token.Estimator) []Chunk {
	var chunks []Chunk
	var current []string
	var currentPages []int
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		m := meta
		m.PageNumbers = append([]int(nil), currentPages...)
		chunks = append(chunks, Chunk{
			Text:       strings.Join(current, "\n\n"),
			Metadata:   m,
			TokenCount: currentTokens,
		})
		current = nil
		currentPages = nil
		currentTokens = 0
	}

	for _, page := range pages {
		pageNo := page.PageIndex + 1
		for _, para := range paragraphSplitRe.Split(page.Text, -1) {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}

			if sectionBreakRe.MatchString(para) {
				flush()
			}

			paraTokens := est.Estimate(para)
			if len(current) > 0 && currentTokens+paraTokens > maxTokens {
				flush()
			}

			current = append(current, para)
			if len(currentPages) == 0 || currentPages[len(currentPages)-1] != pageNo {
				currentPages = append(currentPages, pageNo)
			}
			currentTokens += paraTokens
		}
	}
	flush()

	return chunks
}
