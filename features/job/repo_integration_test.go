package job_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/features/document"
	"finrag/features/job"
	"finrag/internal/testutils"
)

func TestJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	jobRepo := job.NewPostgresRepo(s.DB)
	docRepo := document.NewPostgresRepo(s.DB)
	ctx := context.Background()

	doc := &document.Document{
		Ticker:         "AAPL",
		DocType:        "sec_filing",
		SourceFilename: "aapl-10k.txt",
		ContentHash:    "hash-job-test",
		Status:         "failed",
	}
	err := docRepo.Save(ctx, doc, "Item 1. Business.")
	require.NoError(t, err)

	j1 := &job.Job{
		DocumentID: doc.ID,
		Handler:    "ingest-worker",
		Payload:    json.RawMessage(`{"data": 1}`),
		Error:      "error 1",
	}
	err = jobRepo.Save(ctx, j1)
	require.NoError(t, err)

	// Ensure a visible created_at gap for the ordering check
	time.Sleep(100 * time.Millisecond)

	j2 := &job.Job{
		DocumentID: doc.ID,
		Handler:    "ingest-worker",
		Payload:    json.RawMessage(`{"data": 2}`),
		Error:      "error 2",
	}
	err = jobRepo.Save(ctx, j2)
	require.NoError(t, err)

	jobs, err := jobRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, j2.ID, jobs[0].ID, "Newest job should be first")
	assert.Equal(t, j1.ID, jobs[1].ID, "Oldest job should be last")

	// FK cascade: hard-deleting the document removes its failed jobs
	_, err = s.DB.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", doc.ID)
	require.NoError(t, err)

	count, err := jobRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Jobs should be deleted via cascade when document is hard deleted")
}
