package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/bramblewiki/bramble/pkg/audit"
	"github.com/bramblewiki/bramble/pkg/httputil"
	"github.com/bramblewiki/bramble/pkg/middleware"
	"github.com/bramblewiki/bramble/pkg/page"
	"github.com/bramblewiki/bramble/pkg/policy"
)

type pageBody struct {
	Name     string    `json:"name"`
	Text     string    `json:"text,omitempty"`
	Author   string    `json:"author,omitempty"`
	Modified time.Time `json:"modified,omitempty"`
}

type aclEntryBody struct {
	Principal string   `json:"principal"`
	Actions   []string `json:"actions"`
}

type attachmentBody struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Author string `json:"author,omitempty"`
}

func (s *Server) listPages(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string][]string{"pages": s.deps.Pages.All()})
}

// savePage creates or updates a page. Editing an existing page needs edit
// permission on it; creating a new one needs the wiki-level createPages
// grant. Both checks run against the saving session.
func (s *Server) savePage(w http.ResponseWriter, r *http.Request) {
	var body pageBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if body.Name == "" {
		httputil.WriteBadRequest(w, "page name is required")
		return
	}

	sess := middleware.SessionFromRequest(r)
	_, err := s.deps.Pages.Get(body.Name)
	exists := err == nil

	if exists {
		if !s.deps.Evaluator.CheckPermission(r.Context(), sess, body.Name, policy.PermEdit) {
			s.denied(w, r, sess.DisplayName(), body.Name, policy.PermEdit)
			return
		}
	} else if !s.deps.Evaluator.CheckStaticPermission(r.Context(), sess, policy.PermCreatePages) {
		s.denied(w, r, sess.DisplayName(), body.Name, policy.PermCreatePages)
		return
	}

	p, err := s.deps.Pages.Save(body.Name, body.Text, sess.DisplayName())
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	s.record(r, audit.NewRecord(audit.RecordPageSave, audit.OutcomeSuccess,
		sess.DisplayName(), p.Name, ""))
	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, pageBody{
		Name:     p.Name,
		Author:   p.Author,
		Modified: p.Modified,
	})
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	sess := middleware.SessionFromRequest(r)
	if !s.deps.Evaluator.CheckPermission(r.Context(), sess, name, policy.PermView) {
		s.denied(w, r, sess.DisplayName(), name, policy.PermView)
		return
	}
	p, err := s.deps.Pages.Get(name)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, pageBody{
		Name:     p.Name,
		Text:     p.Text,
		Author:   p.Author,
		Modified: p.Modified,
	})
}

func (s *Server) deletePage(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	sess := middleware.SessionFromRequest(r)
	if !s.deps.Evaluator.CheckPermission(r.Context(), sess, name, policy.PermDelete) {
		s.denied(w, r, sess.DisplayName(), name, policy.PermDelete)
		return
	}
	if err := s.deps.Pages.Delete(name); err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	s.record(r, audit.NewRecord(audit.RecordPageDelete, audit.OutcomeSuccess,
		sess.DisplayName(), name, ""))
	httputil.WriteNoContent(w)
}

func (s *Server) getPageAcl(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	sess := middleware.SessionFromRequest(r)
	if !s.deps.Evaluator.CheckPermission(r.Context(), sess, name, policy.PermView) {
		s.denied(w, r, sess.DisplayName(), name, policy.PermView)
		return
	}
	p, err := s.deps.Pages.Get(name)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}

	entries := p.ACL().Entries()
	out := make([]aclEntryBody, 0, len(entries))
	for _, e := range entries {
		out = append(out, aclEntryBody{Principal: e.Principal.Name(), Actions: e.Actions})
	}
	httputil.WriteSuccess(w, map[string]interface{}{"page": name, "entries": out})
}

func (s *Server) listAttachments(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	sess := middleware.SessionFromRequest(r)
	if !s.deps.Evaluator.CheckPermission(r.Context(), sess, name, policy.PermView) {
		s.denied(w, r, sess.DisplayName(), name, policy.PermView)
		return
	}
	attachments := s.deps.Pages.Attachments(name)
	out := make([]attachmentBody, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, attachmentBody{Name: a.Name, Size: a.Size, Author: a.Author})
	}
	httputil.WriteSuccess(w, map[string]interface{}{"page": name, "attachments": out})
}

func (s *Server) addAttachment(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	var body attachmentBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if body.Name == "" {
		httputil.WriteBadRequest(w, "attachment name is required")
		return
	}

	sess := middleware.SessionFromRequest(r)
	// Upload permission is checked against the owning page, so a page ACL
	// governs its attachments uniformly.
	if !s.deps.Evaluator.CheckPermission(r.Context(), sess, name, policy.PermUpload) {
		s.denied(w, r, sess.DisplayName(), name, policy.PermUpload)
		return
	}

	a, err := s.deps.Pages.Attach(name, body.Name, sess.DisplayName(), body.Size)
	if err != nil {
		if errors.Is(err, page.ErrNoSuchPage) {
			httputil.WriteNotFound(w, err.Error())
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	s.record(r, audit.NewRecord(audit.RecordAttachmentAdd, audit.OutcomeSuccess,
		sess.DisplayName(), a.Key(), ""))
	httputil.WriteCreated(w, attachmentBody{Name: a.Name, Size: a.Size, Author: a.Author})
}

// denied writes the 403 and audits the refusal in one place.
func (s *Server) denied(w http.ResponseWriter, r *http.Request, actor, resource string, perm policy.Permission) {
	s.record(r, audit.NewRecord(audit.RecordAccessDenied, audit.OutcomeDenied,
		actor, resource, string(perm)))
	httputil.WriteForbidden(w, "permission denied: "+string(perm))
}
