package settings

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context) (*Settings, error) {
	s := &Settings{}
	query := `SELECT id, rerank_provider, rerank_api_key, gemini_api_key, retrieval_top_k, rerank_enabled, rerank_top_k, min_score, chunk_max_tokens, filter_boilerplate FROM settings WHERE id = 1`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ID, &s.RerankProvider, &s.RerankAPIKey, &s.GeminiAPIKey,
		&s.RetrievalTopK, &s.RerankEnabled, &s.RerankTopK, &s.MinScore,
		&s.ChunkMaxTokens, &s.FilterBoilerplate,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepo) Update(ctx context.Context, s *Settings) error {
	query := `
		UPDATE settings
		SET rerank_provider = $1, rerank_api_key = $2, gemini_api_key = $3, retrieval_top_k = $4, rerank_enabled = $5, rerank_top_k = $6, min_score = $7, chunk_max_tokens = $8, filter_boilerplate = $9, updated_at = NOW()
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query,
		s.RerankProvider, s.RerankAPIKey, s.GeminiAPIKey,
		s.RetrievalTopK, s.RerankEnabled, s.RerankTopK, s.MinScore,
		s.ChunkMaxTokens, s.FilterBoilerplate,
	)
	return err
}
