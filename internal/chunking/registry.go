package chunking

import (
	"log/slog"

	"finrag/internal/token"
)

// Registry resolves a chunking strategy for a document type. Instances are
// built once at construction; the registry itself is the only cache, and it
// is owned by whoever composes the application.
type Registry struct {
	chunkers map[DocType]Chunker
	fallback Chunker
}

// Options tune the strategies held by a registry. Zero values select the
// defaults.
type Options struct {
	MaxTokens     int
	OverlapTokens int
	PreviewRows   int
	// MaxPages caps how many pages of a paged document get chunked; zero
	// or negative keeps every page.
	MaxPages  int
	Estimator *token.Estimator
}

func NewRegistry(opts Options) *Registry {
	est := opts.Estimator
	if est == nil {
		est = token.NewEstimator(nil)
	}

	research := NewResearchChunker(opts.MaxTokens, est)
	if opts.MaxPages > 0 {
		research.maxPages = opts.MaxPages
	}
	return &Registry{
		chunkers: map[DocType]Chunker{
			DocTypeResearchReport:     research,
			DocTypeSECFiling:          NewSECChunker(opts.MaxTokens, opts.OverlapTokens, est),
			DocTypeEarningsTranscript: NewTranscriptChunker(opts.MaxTokens, est),
			DocTypeFinancialModel:     NewExcelChunker(opts.PreviewRows, est),
		},
		fallback: research,
	}
}

// Get returns the chunker for docType. Unknown and generic types get the
// research chunker, which copes best with unstructured prose.
func (r *Registry) Get(docType DocType) Chunker {
	if c, ok := r.chunkers[docType]; ok {
		return c
	}
	slog.Debug("no specific chunker for doc type, using research fallback", "doc_type", string(docType))
	return r.fallback
}
