package evaluate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"finrag/internal/evaluation"
	"finrag/internal/middleware"
	"finrag/internal/retrieval"
)

// Retriever runs the retrieval pipeline for one evaluation query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts *retrieval.Options) (*retrieval.Result, error)
}

type Handler struct {
	retriever Retriever
}

func NewHandler(retriever Retriever) *Handler {
	return &Handler{retriever: retriever}
}

type evalQuery struct {
	Question    string   `json:"question"`
	RelevantIDs []string `json:"relevant_ids"`
}

type evalRequest struct {
	Queries []evalQuery `json:"queries"`
	K       int         `json:"k"`
	Rerank  *bool       `json:"rerank,omitempty"`
}

// Run retrieves each judged query and scores the ranked IDs against the
// supplied relevance sets.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Queries) == 0 {
		h.writeError(ctx, w, "VALIDATION_ERROR", "queries is required", http.StatusBadRequest)
		return
	}
	if req.K <= 0 {
		req.K = 5
	}

	slog.InfoContext(ctx, "running evaluation", "queries", len(req.Queries), "k", req.K, "correlationId", correlationID)

	var opts *retrieval.Options
	if req.Rerank != nil {
		opts = &retrieval.Options{TopK: &req.K, Rerank: req.Rerank}
	} else {
		opts = &retrieval.Options{TopK: &req.K}
	}

	results := make([]evaluation.QueryResult, 0, len(req.Queries))
	for _, q := range req.Queries {
		if q.Question == "" {
			h.writeError(ctx, w, "VALIDATION_ERROR", "every query needs a question", http.StatusBadRequest)
			return
		}

		res, err := h.retriever.Retrieve(ctx, q.Question, opts)
		if err != nil {
			slog.ErrorContext(ctx, "evaluation query failed", "error", err, "question", q.Question, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
			return
		}

		retrieved := make([]string, 0, len(res.Results))
		for _, sr := range res.Results {
			retrieved = append(retrieved, sr.ID)
		}
		relevant := make(map[string]bool, len(q.RelevantIDs))
		for _, id := range q.RelevantIDs {
			relevant[id] = true
		}

		results = append(results, evaluation.QueryResult{
			Query:     q.Question,
			Retrieved: retrieved,
			Relevant:  relevant,
		})
	}

	report := evaluation.Evaluate(results, req.K)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": report}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
