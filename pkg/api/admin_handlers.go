package api

import (
	"net/http"

	"github.com/bramblewiki/bramble/pkg/audit"
	"github.com/bramblewiki/bramble/pkg/httputil"
	"github.com/bramblewiki/bramble/pkg/middleware"
)

func (s *Server) listPolicyRoles(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string][]string{
		"roles": s.deps.Policy.Current().Roles(),
	})
}

func (s *Server) reloadPolicy(w http.ResponseWriter, r *http.Request) {
	actor := middleware.SessionFromRequest(r).DisplayName()
	if err := s.deps.Policy.Reload(); err != nil {
		s.record(r, audit.NewRecord(audit.RecordPolicyReload, audit.OutcomeFailure, actor, "", err.Error()))
		httputil.WriteError(w, http.StatusUnprocessableEntity, err)
		return
	}
	httputil.WriteSuccess(w, map[string]string{"status": "reloaded"})
}

func (s *Server) recentAudit(w http.ResponseWriter, r *http.Request) {
	if s.deps.AuditDB == nil {
		httputil.WriteErrorMessage(w, http.StatusNotImplemented, "audit database is not configured")
		return
	}
	limit, err := httputil.QueryInt(r, "limit", 50)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	records, err := s.deps.AuditDB.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"records": records})
}
