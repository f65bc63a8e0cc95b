package middleware

import (
	"context"
	"net/http"

	"github.com/bramblewiki/bramble/pkg/contextkeys"
	"github.com/bramblewiki/bramble/pkg/observability"
	"github.com/bramblewiki/bramble/pkg/session"
	"github.com/bramblewiki/bramble/pkg/user"
)

const (
	// IdentityHeader carries the verified login name set by the trusted
	// authentication proxy in front of the service.
	IdentityHeader = "X-Bramble-User"

	// AssertionCookie carries a self-asserted name. It is trusted only for
	// the asserted tier, which grants nothing beyond the Asserted role.
	AssertionCookie = "bramble_assertion"
)

// SessionMiddleware attaches a wiki session to every request. The session
// ID rides in a cookie; identity comes from the upstream proxy's header
// (authenticated) or from the assertion cookie (asserted).
type SessionMiddleware struct {
	manager    *session.Manager
	users      user.Directory
	cookieName string
	metrics    *observability.Metrics
}

// NewSessionMiddleware creates the middleware over the given session
// manager and user directory.
func NewSessionMiddleware(manager *session.Manager, users user.Directory, cookieName string) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "bramble_session"
	}
	return &SessionMiddleware{manager: manager, users: users, cookieName: cookieName}
}

// WithMetrics attaches Prometheus metrics; the active-session gauge is
// updated whenever the middleware creates a session. metrics may be nil.
func (m *SessionMiddleware) WithMetrics(metrics *observability.Metrics) *SessionMiddleware {
	m.metrics = metrics
	return m
}

// Handler wires the middleware into a chain.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(m.cookieName); err == nil {
			id = c.Value
		}

		s, existed := m.manager.Get(id)
		if !existed {
			s = m.manager.GetOrCreate("")
			http.SetCookie(w, &http.Cookie{
				Name:     m.cookieName,
				Value:    s.ID(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			if m.metrics != nil {
				m.metrics.SetSessionsActive(m.manager.Count())
			}
		}

		if login := r.Header.Get(IdentityHeader); login != "" && !s.IsAuthenticated() {
			s.Authenticate(m.profileFor(login))
		} else if s.IsAnonymous() {
			if c, err := r.Cookie(AssertionCookie); err == nil && c.Value != "" {
				s.Assert(c.Value)
			}
		}

		ctx := context.WithValue(r.Context(), contextkeys.SessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// profileFor resolves the login name against the user directory, falling
// back to a minimal profile so an upstream-verified identity is never
// dropped just because the directory has no entry yet.
func (m *SessionMiddleware) profileFor(login string) *user.Profile {
	if m.users != nil {
		if p, _, ok := m.users.Lookup(login); ok {
			return p
		}
	}
	return &user.Profile{
		LoginName: login,
		FullName:  login,
		WikiName:  user.WikiNameOf(login),
	}
}

// SessionFromRequest returns the session attached by the middleware, or nil
// when the request skipped the chain.
func SessionFromRequest(r *http.Request) *session.Session {
	if s, ok := r.Context().Value(contextkeys.SessionKey).(*session.Session); ok {
		return s
	}
	return nil
}
