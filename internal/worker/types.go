package worker

import (
	"context"

	"finrag/internal/pipeline"
)

type Ingestor interface {
	Ingest(ctx context.Context, req pipeline.IngestRequest) (*pipeline.IngestResult, error)
}

type DocumentStatusUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateChunkCount(ctx context.Context, id string, chunks int) error
}
