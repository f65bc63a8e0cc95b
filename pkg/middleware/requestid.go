package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/bramblewiki/bramble/pkg/contextkeys"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation ID to every request, honoring one passed
// by an upstream proxy.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), contextkeys.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request's correlation ID, or empty.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextkeys.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
