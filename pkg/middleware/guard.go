package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bramblewiki/bramble/pkg/authz"
	"github.com/bramblewiki/bramble/pkg/httputil"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/principal"
)

// ResourceFunc names the resource a request targets, typically from a path
// variable.
type ResourceFunc func(*http.Request) string

// PathResource returns a ResourceFunc reading the named mux path variable.
func PathResource(key string) ResourceFunc {
	return func(r *http.Request) string {
		return mux.Vars(r)[key]
	}
}

// RequirePermission guards a route with a resource permission check.
func RequirePermission(ev *authz.Evaluator, perm policy.Permission, resource ResourceFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromRequest(r)
			if s == nil {
				httputil.WriteUnauthorized(w, "no session")
				return
			}
			if !ev.CheckPermission(r.Context(), s, resource(r), perm) {
				httputil.WriteForbidden(w, "permission denied: "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaticPermission guards a route with a wiki-level permission that
// has no resource, such as createGroups.
func RequireStaticPermission(ev *authz.Evaluator, perm policy.Permission) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromRequest(r)
			if s == nil {
				httputil.WriteUnauthorized(w, "no session")
				return
			}
			if !ev.CheckStaticPermission(r.Context(), s, perm) {
				httputil.WriteForbidden(w, "permission denied: "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole guards a route behind a role check.
func RequireRole(ev *authz.Evaluator, role principal.Principal) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromRequest(r)
			if s == nil {
				httputil.WriteUnauthorized(w, "no session")
				return
			}
			if !ev.IsUserInRole(s, role) {
				httputil.WriteForbidden(w, "role required: "+role.Name())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
