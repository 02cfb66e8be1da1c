package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finrag/internal/boilerplate"
	"finrag/internal/chunking"
	"finrag/internal/sanitize"
	"finrag/internal/vectorstore"
)

// DefaultEmbedBatchSize bounds the number of texts per embedding call.
const DefaultEmbedBatchSize = 32

// BatchEmbedder embeds many texts in one call, preserving input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestRequest carries one document through the ingestion pipeline. Text is
// the already-extracted plain text of the document.
type IngestRequest struct {
	Text     string                 `json:"text"`
	Metadata chunking.ChunkMetadata `json:"metadata"`
}

// IngestResult reports what one ingestion did.
type IngestResult struct {
	SourceFilename string `json:"source_filename,omitempty"`
	Chunks         int    `json:"chunks"`
	Superseded     int    `json:"superseded"`
	BoilerplateCut int    `json:"boilerplate_chars_removed"`
}

// Ingestor runs sanitize, boilerplate filtering, chunking, embedding and
// storage for incoming documents. Re-ingesting a source filename supersedes
// its previous chunks.
type Ingestor struct {
	filter    *boilerplate.Filter
	registry  *chunking.Registry
	embedder  BatchEmbedder
	store     vectorstore.Store
	batchSize int
}

// NewIngestor builds an ingestor. batchSize caps how many chunk texts go
// into a single embedding call; zero or negative means DefaultEmbedBatchSize.
func NewIngestor(filter *boilerplate.Filter, registry *chunking.Registry, embedder BatchEmbedder, store vectorstore.Store, batchSize int) *Ingestor {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &Ingestor{
		filter:    filter,
		registry:  registry,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

func (ing *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	result := &IngestResult{SourceFilename: req.Metadata.SourceFilename}

	text := sanitize.DocumentText(req.Text)
	filtered := ing.filter.Filter(text)
	result.BoilerplateCut = filtered.CharsRemoved

	chunker := ing.registry.Get(req.Metadata.DocType)
	chunks := chunker.Chunk(filtered.Text, req.Metadata)
	if len(chunks) == 0 {
		slog.InfoContext(ctx, "document produced no chunks", "source", req.Metadata.SourceFilename)
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ing.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	// Supersede earlier chunks of the same file before inserting new ones.
	if req.Metadata.SourceFilename != "" {
		removed, err := ing.store.DeleteBySource(ctx, req.Metadata.SourceFilename)
		if err != nil {
			return nil, fmt.Errorf("supersede previous chunks: %w", err)
		}
		result.Superseded = removed
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:        uuid.NewString(),
			Text:      c.Text,
			Embedding: vectors[i],
			Metadata:  c.Metadata,
		}
	}

	added, err := ing.store.Add(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	result.Chunks = added

	slog.InfoContext(ctx, "document ingested",
		"source", req.Metadata.SourceFilename,
		"doc_type", string(req.Metadata.DocType),
		"chunks", result.Chunks,
		"superseded", result.Superseded,
		"boilerplate_chars_removed", result.BoilerplateCut)
	return result, nil
}

// embedAll embeds texts in batches of at most batchSize, preserving input
// order. Large documents would otherwise push every chunk into one provider
// request.
func (ing *Ingestor) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += ing.batchSize {
		end := min(start+ing.batchSize, len(texts))
		batch, err := ing.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
