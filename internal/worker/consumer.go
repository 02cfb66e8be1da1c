package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"finrag/features/job"
	"finrag/internal/middleware"
	"finrag/internal/pipeline"
)

// ingestTimeout bounds one document's pipeline run, embedding included.
const ingestTimeout = 5 * time.Minute

type IngestConsumer struct {
	ingestor  Ingestor
	documents DocumentStatusUpdater
	jobRepo   job.Repository
}

func NewIngestConsumer(ing Ingestor, docs DocumentStatusUpdater, jobs job.Repository) *IngestConsumer {
	return &IngestConsumer{
		ingestor:  ing,
		documents: docs,
		jobRepo:   jobs,
	}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task IngestTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison pill: invalid JSON will never succeed, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	correlationID := task.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if task.DocumentID == "" || task.Text == "" {
		slog.ErrorContext(ctx, "missing required fields, dropping", "document_id", task.DocumentID)
		return nil
	}

	slog.InfoContext(ctx, "received ingest task", "document_id", task.DocumentID, "text_len", len(task.Text))

	ingestCtx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	res, err := h.ingestor.Ingest(ingestCtx, pipeline.IngestRequest{Text: task.Text, Metadata: task.Metadata})
	if err != nil {
		slog.ErrorContext(ctx, "ingestion failed", "document_id", task.DocumentID, "error", err)

		if uerr := h.documents.UpdateStatus(ctx, task.DocumentID, "failed"); uerr != nil {
			slog.WarnContext(ctx, "failed to update document status to failed", "error", uerr)
		}

		failedJob := &job.Job{
			DocumentID: task.DocumentID,
			Handler:    "ingest-worker",
			Payload:    m.Body,
			Error:      err.Error(),
		}
		if serr := h.jobRepo.Save(ctx, failedJob); serr != nil {
			slog.ErrorContext(ctx, "failed to save failed job", "error", serr)
		} else {
			slog.InfoContext(ctx, "saved failed job for retry", "job_id", failedJob.ID)
		}

		// The failed job row is the retry path; requeueing here would
		// hammer the embedding API with a payload that just failed.
		return nil
	}

	if err := h.documents.UpdateChunkCount(ctx, task.DocumentID, res.Chunks); err != nil {
		slog.WarnContext(ctx, "failed to update chunk count", "error", err)
	}
	if err := h.documents.UpdateStatus(ctx, task.DocumentID, "completed"); err != nil {
		slog.WarnContext(ctx, "failed to update document status to completed", "error", err)
	}

	slog.InfoContext(ctx, "document ingested",
		"document_id", task.DocumentID,
		"chunks", res.Chunks,
		"superseded", res.Superseded)
	return nil
}
