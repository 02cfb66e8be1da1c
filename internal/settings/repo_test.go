package settings_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"finrag/internal/settings"
)

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := settings.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "rerank_provider", "rerank_api_key", "gemini_api_key", "retrieval_top_k", "rerank_enabled", "rerank_top_k", "min_score", "chunk_max_tokens", "filter_boilerplate"}).
			AddRow(1, "cohere", "key1", "key2", 10, true, 5, 0.25, 800, true)

		// Regex matching for the query
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, rerank_provider, rerank_api_key, gemini_api_key, retrieval_top_k, rerank_enabled, rerank_top_k, min_score, chunk_max_tokens, filter_boilerplate FROM settings WHERE id = 1")).
			WillReturnRows(rows)

		s, err := repo.Get(context.Background())
		assert.NoError(t, err)
		assert.NotNil(t, s)
		assert.Equal(t, "cohere", s.RerankProvider)
		assert.Equal(t, 10, s.RetrievalTopK)
		assert.True(t, s.RerankEnabled)
		assert.Equal(t, float32(0.25), s.MinScore)
		assert.Equal(t, 800, s.ChunkMaxTokens)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id")).
			WillReturnError(sqlmock.ErrCancelled)

		s, err := repo.Get(context.Background())
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestPostgresRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := settings.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		s := &settings.Settings{
			RerankProvider:    "jina",
			RerankAPIKey:      "k1",
			GeminiAPIKey:      "k2",
			RetrievalTopK:     20,
			RerankEnabled:     true,
			RerankTopK:        5,
			MinScore:          0.3,
			ChunkMaxTokens:    600,
			FilterBoilerplate: true,
		}

		mock.ExpectExec(regexp.QuoteMeta("UPDATE settings")).
			WithArgs(s.RerankProvider, s.RerankAPIKey, s.GeminiAPIKey, s.RetrievalTopK, s.RerankEnabled, s.RerankTopK, s.MinScore, s.ChunkMaxTokens, s.FilterBoilerplate).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Update(context.Background(), s)
		assert.NoError(t, err)
	})
}
