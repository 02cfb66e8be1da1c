package retrieval

import (
	"context"
	"time"

	"finrag/internal/vectorstore"
)

// Config carries the retrieval defaults; per-call Options override them.
type Config struct {
	TopK       int
	Rerank     bool
	RerankTopK int
	MinScore   float32
}

func DefaultConfig() Config {
	return Config{TopK: 10, RerankTopK: 5}
}

// Options overrides the service defaults for a single query.
type Options struct {
	TopK       *int
	Rerank     *bool
	RerankTopK *int
	MinScore   *float32
	Filter     *vectorstore.MetadataFilter
}

// Result is the answer to one retrieval query.
type Result struct {
	Query           string                     `json:"query"`
	Results         []vectorstore.SearchResult `json:"results"`
	TotalCandidates int                        `json:"total_candidates"`
	Reranked        bool                       `json:"reranked"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Searcher interface {
	Search(ctx context.Context, embedding []float32, topK int, filter *vectorstore.MetadataFilter) ([]vectorstore.SearchResult, error)
}

// Reranker returns candidate indices in best-first order.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string) ([]int, error)
}

type Service struct {
	embedder Embedder
	store    Searcher
	reranker Reranker
	cfg      Config
	logger   *QueryLogger
}

func NewService(e Embedder, s Searcher, r Reranker, cfg Config, l *QueryLogger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = DefaultConfig().RerankTopK
	}
	return &Service{embedder: e, store: s, reranker: r, cfg: cfg, logger: l}
}

// Retrieve embeds the query, searches the vector store, and optionally
// reranks the candidates. When reranking, it over-fetches three times the
// requested top-k so the reranker has a wider pool to reorder.
func (s *Service) Retrieve(ctx context.Context, query string, opts *Options) (*Result, error) {
	start := time.Now()
	out := &Result{Query: query, Results: []vectorstore.SearchResult{}}
	var err error

	defer func() {
		if s.logger != nil && err == nil {
			s.logger.Log(QueryLogEntry{
				Query:      query,
				NumResults: len(out.Results),
				Candidates: out.TotalCandidates,
				Reranked:   out.Reranked,
				Duration:   time.Since(start),
			})
		}
	}()

	topK := s.cfg.TopK
	rerank := s.cfg.Rerank
	rerankTopK := s.cfg.RerankTopK
	minScore := s.cfg.MinScore
	var filter *vectorstore.MetadataFilter

	if opts != nil {
		if opts.TopK != nil {
			topK = *opts.TopK
		}
		if opts.Rerank != nil {
			rerank = *opts.Rerank
		}
		if opts.RerankTopK != nil {
			rerankTopK = *opts.RerankTopK
		}
		if opts.MinScore != nil {
			minScore = *opts.MinScore
		}
		filter = opts.Filter
	}
	rerank = rerank && s.reranker != nil

	fetchK := topK
	if rerank {
		fetchK = topK * 3
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Search(ctx, vec, fetchK, filter)
	if err != nil {
		return nil, err
	}
	out.TotalCandidates = len(docs)

	if minScore > 0 {
		kept := docs[:0]
		for _, d := range docs {
			if d.Score >= minScore {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	if rerank && len(docs) > 0 {
		contents := make([]string, len(docs))
		for i, d := range docs {
			contents[i] = d.Text
		}

		indices, rerr := s.reranker.Rerank(ctx, query, contents)
		if rerr != nil {
			err = rerr
			return nil, rerr
		}

		reranked := make([]vectorstore.SearchResult, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(docs) {
				reranked = append(reranked, docs[idx])
			}
		}
		if len(reranked) > rerankTopK {
			reranked = reranked[:rerankTopK]
		}
		out.Results = reranked
		out.Reranked = true
		return out, nil
	}

	if len(docs) > topK {
		docs = docs[:topK]
	}
	out.Results = docs
	return out, nil
}
