package document

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"finrag/internal/chunking"
	"finrag/internal/config"
	"finrag/internal/middleware"
	"finrag/internal/worker"
)

type Document struct {
	ID             string    `json:"id"`
	Ticker         string    `json:"ticker,omitempty"`
	DocType        string    `json:"doc_type"`
	SourceFilename string    `json:"source_filename"`
	FilingDate     string    `json:"filing_date,omitempty"`
	ContentHash    string    `json:"-"`
	Status         string    `json:"status"` // in_progress, completed, failed
	Chunks         int       `json:"chunks"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Repository interface {
	Save(ctx context.Context, doc *Document, content string) error
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	Get(ctx context.Context, id string) (*Document, error)
	GetContent(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]Document, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateChunkCount(ctx context.Context, id string, chunks int) error
	SoftDelete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ChunkStore removes a document's chunks from the vector index.
type ChunkStore interface {
	DeleteBySource(ctx context.Context, sourceFilename string) (int, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo       Repository
	pub        EventPublisher
	chunkStore ChunkStore
}

func NewService(repo Repository, pub EventPublisher, chunkStore ChunkStore) *Service {
	return &Service{repo: repo, pub: pub, chunkStore: chunkStore}
}

func (s *Service) Create(ctx context.Context, doc *Document, text string) error {
	// Dedupe on the document body, not the filename: the same filing
	// re-uploaded under a different name is still a duplicate.
	hash := sha256.Sum256([]byte(text))
	doc.ContentHash = fmt.Sprintf("%x", hash)

	doc.DocType = string(chunking.ParseDocType(doc.DocType))

	exists, err := s.repo.ExistsByHash(ctx, doc.ContentHash)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("Duplicate detected")
	}

	doc.Status = "in_progress"
	if err := s.repo.Save(ctx, doc, text); err != nil {
		return err
	}

	return s.publishTask(ctx, doc, text)
}

func (s *Service) publishTask(ctx context.Context, doc *Document, text string) error {
	task := worker.IngestTask{
		DocumentID: doc.ID,
		Text:       text,
		Metadata: chunking.ChunkMetadata{
			DocType:        chunking.DocType(doc.DocType),
			Ticker:         doc.Ticker,
			FilingDate:     doc.FilingDate,
			SourceFilename: doc.SourceFilename,
		},
		CorrelationID: middleware.GetCorrelationID(ctx),
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	if err := s.pub.Publish(config.TopicIngest, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish ingest task", "error", err, "document_id", doc.ID)
		return err
	}
	slog.InfoContext(ctx, "published ingest task", "document_id", doc.ID, "source", doc.SourceFilename)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	// Clean the vector index first so a failed delete never leaves
	// chunks pointing at a document row that is gone.
	removed, err := s.chunkStore.DeleteBySource(ctx, doc.SourceFilename)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "removed document chunks", "document_id", id, "chunks", removed)

	return s.repo.SoftDelete(ctx, id)
}

// ReIngest re-runs the pipeline over the stored document body. Existing
// chunks are superseded by the worker, not deleted here.
func (s *Service) ReIngest(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	text, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, "in_progress"); err != nil {
		return err
	}

	return s.publishTask(ctx, doc, text)
}
