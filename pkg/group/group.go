package group

import (
	"errors"

	"github.com/bramblewiki/bramble/pkg/principal"
)

var (
	// ErrNoSuchPrincipal is returned when a lookup or removal names a group
	// that does not exist. Recoverable; the caller decides what to do.
	ErrNoSuchPrincipal = errors.New("no such principal")

	// ErrIllegalGroupName is returned when a group name collides with a
	// reserved built-in role name. The mutation is rejected before any state
	// changes.
	ErrIllegalGroupName = errors.New("illegal group name")
)

// Group is a named, explicitly managed collection of member principals.
// Membership uses name equality, so adding two principal variants with the
// same name yields a single member.
type Group struct {
	name    string
	members principal.Set
}

// New creates an empty group. Name validity against the reserved built-in
// role names is enforced at the store boundary, not here, so callers can
// stage a group before attempting to save it.
func New(name string) *Group {
	return &Group{name: name, members: principal.NewSet()}
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Add inserts a member. No-op if a member with the same name exists.
func (g *Group) Add(p principal.Principal) {
	g.members.Add(p)
}

// Remove deletes the member with p's name, if present.
func (g *Group) Remove(p principal.Principal) {
	if p == nil {
		return
	}
	delete(g.members, p.Name())
}

// IsMember reports whether a principal with p's name belongs to the group.
func (g *Group) IsMember(p principal.Principal) bool {
	return g.members.Contains(p)
}

// Members returns the member principals. Order is unspecified.
func (g *Group) Members() []principal.Principal {
	return g.members.Members()
}

// Principal returns the group's principal reference for use in ACLs and
// role sets.
func (g *Group) Principal() principal.Group {
	return principal.NewGroup(g.name)
}

// clone returns a deep copy so store internals never alias caller state.
func (g *Group) clone() *Group {
	c := New(g.name)
	for _, m := range g.members.Members() {
		c.Add(m)
	}
	return c
}
