package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bramblewiki/bramble/pkg/audit"
	"github.com/bramblewiki/bramble/pkg/authz"
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/middleware"
	"github.com/bramblewiki/bramble/pkg/observability"
	"github.com/bramblewiki/bramble/pkg/page"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/principal"
	"github.com/bramblewiki/bramble/pkg/registry"
	"github.com/bramblewiki/bramble/pkg/session"
	"github.com/bramblewiki/bramble/pkg/user"
)

// Deps carries everything the API server needs. Audit and observability
// fields may be nil; the server then skips them.
type Deps struct {
	Groups    *group.Store
	Users     user.Directory
	Pages     *page.Repository
	Registry  *registry.Registry
	Evaluator *authz.Evaluator
	Policy    *policy.Source
	Sessions  *session.Manager
	Audit     audit.Logger
	AuditDB   *audit.DBLogger
	Logger    *observability.Logger
	Metrics   *observability.Metrics
	// SessionCookie names the session ID cookie.
	SessionCookie string
}

// Server is the HTTP API for the wiki's security engine: group
// administration, page and attachment content with ACLs, principal
// resolution, and permission checks.
type Server struct {
	router *mux.Router
	deps   Deps
}

// NewServer creates the server and mounts all routes.
func NewServer(deps Deps) *Server {
	if deps.Audit == nil {
		deps.Audit = audit.NopLogger{}
	}
	if deps.Logger == nil {
		deps.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	s := &Server{router: mux.NewRouter(), deps: deps}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	sessions := middleware.NewSessionMiddleware(s.deps.Sessions, s.deps.Users, s.deps.SessionCookie).
		WithMetrics(s.deps.Metrics)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logging(s.deps.Logger, s.deps.Metrics))
	s.router.Use(sessions.Handler)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Session surface
	api.HandleFunc("/session", s.getSession).Methods("GET")
	api.HandleFunc("/session/logout", s.logout).Methods("POST")

	// Principal resolution and checks
	api.HandleFunc("/principals/{name}", s.resolvePrincipal).Methods("GET")
	api.HandleFunc("/check", s.checkPermission).Methods("POST")

	// Group administration
	groups := api.PathPrefix("/groups").Subrouter()
	groups.HandleFunc("", s.listGroups).Methods("GET")
	groups.HandleFunc("/{name}", s.getGroup).Methods("GET")

	groupWrites := api.PathPrefix("/groups").Subrouter()
	groupWrites.Use(middleware.RequireStaticPermission(s.deps.Evaluator, policy.PermCreateGroups))
	groupWrites.HandleFunc("", s.createGroup).Methods("POST")
	groupWrites.HandleFunc("/{name}", s.replaceGroup).Methods("PUT")
	groupWrites.HandleFunc("/{name}", s.deleteGroup).Methods("DELETE")
	groupWrites.HandleFunc("/{name}/members", s.addGroupMember).Methods("POST")
	groupWrites.HandleFunc("/{name}/members/{member}", s.removeGroupMember).Methods("DELETE")

	// Content
	api.HandleFunc("/pages", s.listPages).Methods("GET")
	api.HandleFunc("/pages", s.savePage).Methods("POST")
	api.HandleFunc("/pages/{name}", s.getPage).Methods("GET")
	api.HandleFunc("/pages/{name}", s.deletePage).Methods("DELETE")
	api.HandleFunc("/pages/{name}/acl", s.getPageAcl).Methods("GET")
	api.HandleFunc("/pages/{name}/attachments", s.listAttachments).Methods("GET")
	api.HandleFunc("/pages/{name}/attachments", s.addAttachment).Methods("POST")

	// Admin surface
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(s.deps.Evaluator, principal.NewGroup("Admin")))
	admin.HandleFunc("/policy/roles", s.listPolicyRoles).Methods("GET")
	admin.HandleFunc("/policy/reload", s.reloadPolicy).Methods("POST")
	admin.HandleFunc("/audit", s.recentAudit).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// record writes an audit record enriched with request context, logging but
// never propagating sink failures.
func (s *Server) record(r *http.Request, rec *audit.Record) {
	rec.RequestID = middleware.RequestIDFrom(r.Context())
	rec.RemoteIP = r.RemoteAddr
	if err := s.deps.Audit.Log(r.Context(), rec); err != nil {
		s.deps.Logger.WithError(err).Warn("failed to write audit record")
	}
}
