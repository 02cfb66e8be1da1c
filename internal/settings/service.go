package settings

import (
	"context"
)

// Settings holds the runtime-tunable knobs of the pipeline. A single row in
// Postgres backs them so they can change without a redeploy.
type Settings struct {
	ID                int     `json:"-"`
	RerankProvider    string  `json:"rerank_provider"`
	RerankAPIKey      string  `json:"rerank_api_key"`
	GeminiAPIKey      string  `json:"gemini_api_key"`
	RetrievalTopK     int     `json:"retrieval_top_k"`
	RerankEnabled     bool    `json:"rerank_enabled"`
	RerankTopK        int     `json:"rerank_top_k"`
	MinScore          float32 `json:"min_score"`
	ChunkMaxTokens    int     `json:"chunk_max_tokens"`
	FilterBoilerplate bool    `json:"filter_boilerplate"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, set *Settings) error {
	return s.repo.Update(ctx, set)
}
