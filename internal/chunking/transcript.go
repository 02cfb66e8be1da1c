package chunking

import (
	"log/slog"
	"regexp"
	"strings"

	"finrag/internal/token"
	"finrag/internal/transcript"
)

// Sentence boundary: split after ., ! or ? followed by whitespace.
var sentenceSplitRe = regexp.MustCompile(`([.!?])\s+`)

// TranscriptChunker emits one chunk per speaker turn, splitting oversized
// turns on sentence boundaries. A transcript without recognizable speaker
// lines becomes a single chunk.
type TranscriptChunker struct {
	maxTokens int
	estimator *token.Estimator
}

func NewTranscriptChunker(maxTokens int, estimator *token.Estimator) *TranscriptChunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &TranscriptChunker{maxTokens: maxTokens, estimator: estimator}
}

func (c *TranscriptChunker) Chunk(text string, meta ChunkMetadata) []Chunk {
	parsed := transcript.Parse(text)

	if len(parsed.Sections) == 0 {
		return number([]Chunk{{
			Text:       text,
			Metadata:   meta,
			TokenCount: c.estimator.Estimate(text),
		}})
	}

	var chunks []Chunk
	for _, section := range parsed.Sections {
		sectionMeta := meta
		sectionMeta.SectionName = string(section.Type)
		sectionMeta.Speaker = section.Speaker

		tokens := c.estimator.Estimate(section.Text)
		if tokens <= c.maxTokens {
			chunks = append(chunks, Chunk{
				Text:       section.Text,
				Metadata:   sectionMeta,
				TokenCount: tokens,
			})
			continue
		}

		chunks = append(chunks, c.splitLongTurn(section.Text, sectionMeta)...)
	}

	chunks = number(chunks)

	slog.Debug("transcript chunker finished", "chunks", len(chunks), "turns", len(parsed.Sections))
	return chunks
}

// splitLongTurn greedily packs sentences of one speaker turn under the
// token budget.
func (c *TranscriptChunker) splitLongTurn(text string, meta ChunkMetadata) []Chunk {
	sentences := splitSentences(text)

	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:       strings.Join(current, " "),
			Metadata:   meta,
			TokenCount: currentTokens,
		})
		current = nil
		currentTokens = 0
	}

	for _, sent := range sentences {
		sentTokens := c.estimator.Estimate(sent)
		if len(current) > 0 && currentTokens+sentTokens > c.maxTokens {
			flush()
		}
		current = append(current, sent)
		currentTokens += sentTokens
	}
	flush()

	return chunks
}

// splitSentences keeps the terminal punctuation with its sentence.
func splitSentences(text string) []string {
	parts := sentenceSplitRe.ReplaceAllString(text, "$1\x00")
	out := strings.Split(parts, "\x00")
	sentences := make([]string, 0, len(out))
	for _, s := range out {
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
