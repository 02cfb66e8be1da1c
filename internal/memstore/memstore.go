package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync"

	"finrag/internal/chunking"
	"finrag/internal/vectorstore"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Store is an in-memory vector store with brute-force cosine search. It is
// the default backend for tests and single-node runs and can snapshot its
// contents to disk as JSON.
type Store struct {
	mu      sync.RWMutex
	records []vectorstore.Record
	dim     int
}

func New() *Store {
	return &Store{}
}

func (s *Store) Add(ctx context.Context, records []vectorstore.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if s.dim == 0 {
			s.dim = len(r.Embedding)
		}
		if len(r.Embedding) != s.dim {
			return 0, fmt.Errorf("%w: got %d, store holds %d", ErrDimensionMismatch, len(r.Embedding), s.dim)
		}
	}

	s.records = append(s.records, records...)
	return len(records), nil
}

func (s *Store) Search(ctx context.Context, embedding []float32, topK int, filter *vectorstore.MetadataFilter) ([]vectorstore.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 || topK <= 0 {
		return []vectorstore.SearchResult{}, nil
	}
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, store holds %d", ErrDimensionMismatch, len(embedding), s.dim)
	}

	results := make([]vectorstore.SearchResult, 0, len(s.records))
	for _, r := range s.records {
		if filter != nil && !filter.Matches(r.Metadata) {
			continue
		}
		results = append(results, vectorstore.SearchResult{
			ID:       r.ID,
			Text:     r.Text,
			Score:    cosine(embedding, r.Embedding),
			Metadata: r.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *Store) DeleteBySource(ctx context.Context, sourceFilename string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for _, r := range s.records {
		if r.Metadata.SourceFilename == sourceFilename {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	if len(s.records) == 0 {
		s.dim = 0
	}
	return removed, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.dim = 0
	return nil
}

type snapshot struct {
	Records []snapshotRecord `json:"records"`
}

type snapshotRecord struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Embedding []float32              `json:"embedding"`
	Metadata  chunking.ChunkMetadata `json:"metadata"`
}

// Save writes the full store contents to path as JSON.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	snap := snapshot{Records: make([]snapshotRecord, len(s.records))}
	for i, r := range s.records {
		snap.Records[i] = snapshotRecord(r)
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.Info("vector store snapshot saved", "path", path, "records", len(snap.Records))
	return nil
}

// Load replaces the store contents with a snapshot previously written by Save.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]vectorstore.Record, len(snap.Records))
	s.dim = 0
	for i, r := range snap.Records {
		s.records[i] = vectorstore.Record(r)
		if s.dim == 0 {
			s.dim = len(r.Embedding)
		}
	}

	slog.Info("vector store snapshot loaded", "path", path, "records", len(s.records))
	return nil
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
