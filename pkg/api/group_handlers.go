package api

import (
	"errors"
	"net/http"

	"github.com/bramblewiki/bramble/pkg/audit"
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/httputil"
	"github.com/bramblewiki/bramble/pkg/middleware"
)

// groupBody is the request and response shape for group endpoints.
type groupBody struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func groupToBody(g *group.Group) groupBody {
	members := g.Members()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name())
	}
	return groupBody{Name: g.Name(), Members: names}
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	names := s.deps.Groups.Names()
	httputil.WriteSuccess(w, map[string][]string{"groups": names})
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	g, err := s.deps.Groups.Get(name)
	if err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, groupToBody(g))
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	s.upsertGroup(w, r, "", http.StatusCreated)
}

func (s *Server) replaceGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	s.upsertGroup(w, r, name, http.StatusOK)
}

func (s *Server) upsertGroup(w http.ResponseWriter, r *http.Request, name string, status int) {
	var body groupBody
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if name == "" {
		name = body.Name
	}
	if name == "" {
		httputil.WriteBadRequest(w, "group name is required")
		return
	}

	g := group.New(name)
	for _, member := range body.Members {
		g.Add(s.deps.Registry.Resolve(member))
	}

	sess := middleware.SessionFromRequest(r)
	if err := s.deps.Groups.CreateOrReplace(sess, g); err != nil {
		if errors.Is(err, group.ErrIllegalGroupName) {
			httputil.WriteConflict(w, err.Error())
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	s.record(r, audit.NewRecord(audit.RecordGroupCreate, audit.OutcomeSuccess,
		sess.DisplayName(), name, ""))
	httputil.WriteJSON(w, status, groupToBody(g))
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	if err := s.deps.Groups.Remove(name); err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	s.record(r, audit.NewRecord(audit.RecordGroupDelete, audit.OutcomeSuccess,
		middleware.SessionFromRequest(r).DisplayName(), name, ""))
	httputil.WriteNoContent(w)
}

func (s *Server) addGroupMember(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	var body struct {
		Member string `json:"member"`
	}
	if !httputil.ParseJSONOrError(w, r, &body) {
		return
	}
	if body.Member == "" {
		httputil.WriteBadRequest(w, "member is required")
		return
	}
	if err := s.deps.Groups.AddMember(name, s.deps.Registry.Resolve(body.Member)); err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	s.record(r, audit.NewRecord(audit.RecordGroupMemberAdd, audit.OutcomeSuccess,
		middleware.SessionFromRequest(r).DisplayName(), name, body.Member))
	httputil.WriteNoContent(w)
}

func (s *Server) removeGroupMember(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.PathStringOrError(w, r, "name")
	if !ok {
		return
	}
	member, ok := httputil.PathStringOrError(w, r, "member")
	if !ok {
		return
	}
	if err := s.deps.Groups.RemoveMember(name, s.deps.Registry.Resolve(member)); err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	s.record(r, audit.NewRecord(audit.RecordGroupMemberRemove, audit.OutcomeSuccess,
		middleware.SessionFromRequest(r).DisplayName(), name, member))
	httputil.WriteNoContent(w)
}
