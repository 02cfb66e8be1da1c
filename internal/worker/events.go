package worker

import "finrag/internal/chunking"

// IngestTask is the payload published to the ingest topic for each document.
// Text is the already-extracted plain text; the consumer runs the full
// chunk-embed-store pipeline on it.
type IngestTask struct {
	DocumentID    string                 `json:"document_id"`
	Text          string                 `json:"text"`
	Metadata      chunking.ChunkMetadata `json:"metadata"`
	CorrelationID string                 `json:"correlation_id"`
}
