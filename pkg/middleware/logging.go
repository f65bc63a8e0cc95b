package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bramblewiki/bramble/pkg/observability"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with its status and duration, and records it
// in the HTTP metrics when metrics are attached. The route template, not
// the raw path, labels the metric to keep cardinality bounded.
func Logging(logger *observability.Logger, metrics *observability.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			reqLogger := logger.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": RequestIDFrom(r.Context()),
			})
			ctx := observability.WithLogger(r.Context(), reqLogger)

			next.ServeHTTP(rec, r.WithContext(ctx))

			elapsed := time.Since(start)
			reqLogger.WithFields(map[string]interface{}{
				"status":      rec.status,
				"duration_ms": elapsed.Milliseconds(),
			}).Info("request served")

			if metrics != nil {
				metrics.ObserveHTTPRequest(r.Method, routeTemplate(r), rec.status, elapsed)
			}
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}
