package chunking

import (
	"log/slog"
	"strings"

	"finrag/internal/secfiling"
	"finrag/internal/token"
)

// DefaultOverlapTokens exists as the sub-chunking context constant; no
// sliding-window overlap is applied, so sub-chunks never duplicate text
// across boundaries.
const DefaultOverlapTokens = 100

// SECChunker produces one chunk per detected ITEM section, sub-chunking
// sections that exceed the token budget on paragraph boundaries. Filings
// with no detectable sections fall back to plain paragraph chunking.
type SECChunker struct {
	maxTokens     int
	overlapTokens int
	estimator     *token.Estimator
}

func NewSECChunker(maxTokens, overlapTokens int, estimator *token.Estimator) *SECChunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens <= 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &SECChunker{maxTokens: maxTokens, overlapTokens: overlapTokens, estimator: estimator}
}

func (c *SECChunker) Chunk(text string, meta ChunkMetadata) []Chunk {
	// Reconstruct pages from blank-line breaks when present; otherwise the
	// whole text is one page.
	pageTexts := []string{text}
	if strings.Contains(text, "\n\n") {
		pageTexts = strings.Split(text, "\n\n")
	}

	filing := secfiling.Parse(pageTexts)

	var chunks []Chunk
	if filing.HasSections {
		chunks = c.chunkBySections(text, filing.Sections, meta)
	} else {
		chunks = greedyParagraphs(text, meta, c.maxTokens, c.estimator)
	}

	chunks = number(chunks)

	slog.Debug("sec chunker finished", "chunks", len(chunks), "section_aware", filing.HasSections)
	return chunks
}

func (c *SECChunker) chunkBySections(fullText string, sections []secfiling.Section, meta ChunkMetadata) []Chunk {
	var chunks []Chunk

	for _, section := range sections {
		sectionText := strings.TrimSpace(fullText[section.StartChar:section.EndChar])
		sectionTokens := c.estimator.Estimate(sectionText)

		sectionMeta := meta
		sectionMeta.SectionName = section.Title
		sectionMeta.ItemNumber = section.ItemNumber
		sectionMeta.PageNumbers = pageRange(section.StartPage, section.EndPage)
		sectionMeta.Speaker = ""

		if sectionTokens <= c.maxTokens {
			chunks = append(chunks, Chunk{
				Text:       sectionText,
				Metadata:   sectionMeta,
				TokenCount: sectionTokens,
			})
			continue
		}

		chunks = append(chunks, greedyParagraphs(sectionText, sectionMeta, c.maxTokens, c.estimator)...)
	}

	return chunks
}

func pageRange(start, end int) []int {
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
