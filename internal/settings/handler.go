package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"finrag/internal/middleware"
)

// Handler exposes the single settings row over GET and PUT.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.svc.Get(ctx)
	if err != nil {
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": s}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// UpdateSettings replaces the stored row wholesale. Retrieval knobs take
// effect on the next request; chunking knobs on the next restart.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var s Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if s.RetrievalTopK < 0 || s.RerankTopK < 0 {
		h.writeError(ctx, w, "VALIDATION_ERROR", "top_k values must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.svc.Update(ctx, &s); err != nil {
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	slog.InfoContext(ctx, "settings updated",
		"rerank_enabled", s.RerankEnabled,
		"retrieval_top_k", s.RetrievalTopK,
		"correlationId", middleware.GetCorrelationID(ctx))
	w.WriteHeader(http.StatusOK)
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
