package vectorstore

import (
	"context"
	"errors"

	"finrag/internal/chunking"
)

var ErrUnknownBackend = errors.New("unknown vector store backend")

// Record is a document chunk with its embedding, ready for storage.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  chunking.ChunkMetadata
}

// SearchResult is a single hit from the store, highest score first.
type SearchResult struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Score    float32                `json:"score"`
	Metadata chunking.ChunkMetadata `json:"metadata"`
}

// MetadataFilter narrows a search by metadata fields. Every set field must
// match (AND); the zero filter matches everything.
type MetadataFilter struct {
	Ticker         string
	DocType        string
	SectionName    string
	ItemNumber     string
	Speaker        string
	SourceFilename string
}

func (f MetadataFilter) IsZero() bool {
	return f == MetadataFilter{}
}

// Matches reports whether a chunk's metadata satisfies the filter.
func (f MetadataFilter) Matches(meta chunking.ChunkMetadata) bool {
	if f.Ticker != "" && meta.Ticker != f.Ticker {
		return false
	}
	if f.DocType != "" && string(meta.DocType) != f.DocType {
		return false
	}
	if f.SectionName != "" && meta.SectionName != f.SectionName {
		return false
	}
	if f.ItemNumber != "" && meta.ItemNumber != f.ItemNumber {
		return false
	}
	if f.Speaker != "" && meta.Speaker != f.Speaker {
		return false
	}
	if f.SourceFilename != "" && meta.SourceFilename != f.SourceFilename {
		return false
	}
	return true
}

// Store is the contract every vector store backend satisfies. Results are
// ordered by descending relevance score; an empty store searches to an
// empty slice, never an error.
type Store interface {
	Add(ctx context.Context, records []Record) (int, error)
	Search(ctx context.Context, embedding []float32, topK int, filter *MetadataFilter) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	DeleteBySource(ctx context.Context, sourceFilename string) (int, error)
	Clear(ctx context.Context) error
}
