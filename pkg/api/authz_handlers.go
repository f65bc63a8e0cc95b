package api

import (
	"net/http"

	"github.com/bramblewiki/bramble/pkg/audit"
	"github.com/bramblewiki/bramble/pkg/httputil"
	"github.com/bramblewiki/bramble/pkg/middleware"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/principal"
)

// principalKind names the concrete principal variant in API responses.
func principalKind(p principal.Principal) string {
	switch p.(type) {
	case principal.BuiltinRole:
		return "builtin-role"
	case principal.Group:
		return "group"
	case principal.CustomRole:
		return "custom-role"
	case principal.User:
		return "user"
	default:
		return "unresolved"
	}
}

func (s *Server) resolvePrincipal(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	p := s.deps.Registry.Resolve(name)
	httputil.WriteSuccess(w, map[string]string{
		"name": p.Name(),
		"kind": principalKind(p),
	})
}

type checkRequest struct {
	Resource   string `json:"resource,omitempty"`
	Permission string `json:"permission"`
}

// checkPermission evaluates a permission for the calling session. With a
// resource it runs the full three-tier check; without one it consults the
// static policy alone.
func (s *Server) checkPermission(w http.ResponseWriter, r *http.Request) {
	var body checkRequest
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if body.Permission == "" {
		httputil.WriteBadRequest(w, "permission is required")
		return
	}

	sess := middleware.SessionFromRequest(r)
	perm := policy.Permission(body.Permission)
	var allowed bool
	if body.Resource != "" {
		allowed = s.deps.Evaluator.CheckPermission(r.Context(), sess, body.Resource, perm)
	} else {
		allowed = s.deps.Evaluator.CheckStaticPermission(r.Context(), sess, perm)
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"resource":   body.Resource,
		"permission": body.Permission,
		"allowed":    allowed,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromRequest(r)
	roles := s.deps.Evaluator.EffectiveRoleNames(sess)
	httputil.WriteSuccess(w, map[string]interface{}{
		"state": sess.State().String(),
		"name":  sess.DisplayName(),
		"roles": roles,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromRequest(r)
	actor := sess.DisplayName()
	sess.Logout()
	s.record(r, audit.NewRecord(audit.RecordSessionLogout, audit.OutcomeSuccess, actor, "", ""))
	httputil.WriteNoContent(w)
}
