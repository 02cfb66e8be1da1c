package pipeline

import (
	"context"
	"log/slog"

	"finrag/internal/citations"
	"finrag/internal/retrieval"
	"finrag/internal/vectorstore"
)

// noAnswerText is returned without calling the model when retrieval comes
// back empty.
const noAnswerText = "I could not find relevant information in the indexed documents to answer this question."

// Generator produces an answer from a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever is the slice of the retrieval service the query pipeline needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts *retrieval.Options) (*retrieval.Result, error)
}

// Answer is the complete response to one question. FormattedSources is a
// ready-to-render markdown block of the cited sources.
type Answer struct {
	Query            string                     `json:"query"`
	Answer           string                     `json:"answer"`
	Citations        []citations.Citation       `json:"citations"`
	FormattedSources string                     `json:"formatted_sources,omitempty"`
	Sources          []vectorstore.SearchResult `json:"sources"`
	TotalCandidates  int                        `json:"total_candidates"`
	Reranked         bool                       `json:"reranked"`
}

// Querier ties retrieval and generation together: retrieve, build the
// prompt, generate, then resolve citations against the retrieved chunks.
type Querier struct {
	retriever Retriever
	generator Generator
}

func NewQuerier(retriever Retriever, generator Generator) *Querier {
	return &Querier{retriever: retriever, generator: generator}
}

func (q *Querier) Ask(ctx context.Context, query string, opts *retrieval.Options) (*Answer, error) {
	res, err := q.retriever.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Query:           query,
		Citations:       []citations.Citation{},
		Sources:         res.Results,
		TotalCandidates: res.TotalCandidates,
		Reranked:        res.Reranked,
	}

	if len(res.Results) == 0 {
		slog.InfoContext(ctx, "no chunks retrieved for query", "query", query)
		answer.Answer = noAnswerText
		return answer, nil
	}

	prompt := BuildPrompt(query, res.Results)
	text, err := q.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer.Answer = text
	answer.Citations = citations.Extract(text, res.Results)
	answer.FormattedSources = citations.Format(answer.Citations)

	slog.InfoContext(ctx, "query answered",
		"query", query,
		"sources", len(res.Results),
		"citations", len(answer.Citations),
		"reranked", res.Reranked)
	return answer, nil
}
