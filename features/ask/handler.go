package ask

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"finrag/internal/middleware"
	"finrag/internal/pipeline"
	"finrag/internal/retrieval"
	"finrag/internal/vectorstore"
)

// Asker is the slice of the query pipeline this handler needs.
type Asker interface {
	Ask(ctx context.Context, query string, opts *retrieval.Options) (*pipeline.Answer, error)
}

type Handler struct {
	asker Asker
}

func NewHandler(asker Asker) *Handler {
	return &Handler{asker: asker}
}

type askRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k,omitempty"`
	Rerank   *bool  `json:"rerank,omitempty"`
	Filters  struct {
		Ticker         string `json:"ticker,omitempty"`
		DocType        string `json:"doc_type,omitempty"`
		SectionName    string `json:"section_name,omitempty"`
		Speaker        string `json:"speaker,omitempty"`
		SourceFilename string `json:"source_filename,omitempty"`
	} `json:"filters,omitempty"`
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "question is required", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "answering question", "question", req.Question, "correlationId", correlationID)

	answer, err := h.asker.Ask(ctx, req.Question, optionsFrom(req))
	if err != nil {
		slog.ErrorContext(ctx, "failed to answer question", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": answer}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// optionsFrom maps request overrides onto retrieval options. A request with
// no overrides yields nil so the service uses its configured defaults.
func optionsFrom(req askRequest) *retrieval.Options {
	filter := vectorstore.MetadataFilter{
		Ticker:         req.Filters.Ticker,
		DocType:        req.Filters.DocType,
		SectionName:    req.Filters.SectionName,
		Speaker:        req.Filters.Speaker,
		SourceFilename: req.Filters.SourceFilename,
	}

	if req.TopK == nil && req.Rerank == nil && filter.IsZero() {
		return nil
	}

	opts := &retrieval.Options{
		TopK:   req.TopK,
		Rerank: req.Rerank,
	}
	if !filter.IsZero() {
		opts.Filter = &filter
	}
	return opts
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
