package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HeaderCorrelationID is echoed back on every response so async ingest
// status can be traced across the API and the worker.
const HeaderCorrelationID = "X-Correlation-ID"

type key int

const CorrelationKey key = 0

// CorrelationID tags each request with a correlation id, taken from the
// incoming header when the caller supplies one, and logs the request
// boundaries with it.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), CorrelationKey, id)
		w.Header().Set(HeaderCorrelationID, id)

		start := time.Now()
		slog.InfoContext(ctx, "http request", "method", r.Method, "path", r.URL.Path, "correlation_id", id)

		next.ServeHTTP(w, r.WithContext(ctx))

		slog.InfoContext(ctx, "http request done", "method", r.Method, "path", r.URL.Path, "correlation_id", id, "duration", time.Since(start))
	})
}

// GetCorrelationID returns the request's correlation id, or "unknown" for
// contexts that never passed through the middleware.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationKey).(string); ok {
		return id
	}
	return "unknown"
}

// WithCorrelationID carries an id into contexts created outside an HTTP
// request, such as the NSQ consumer resuming a published task.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}
