// Package contextkeys defines the context keys shared between middleware
// and handlers, so neither side imports the other.
package contextkeys

type contextKey string

const (
	// SessionKey carries the *session.Session attached by the session
	// middleware.
	SessionKey contextKey = "bramble_session"

	// RequestIDKey carries the per-request correlation ID.
	RequestIDKey contextKey = "bramble_request_id"
)
