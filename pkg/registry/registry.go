package registry

import (
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/principal"
	"github.com/bramblewiki/bramble/pkg/user"
)

// Registry resolves bare name strings to typed principals. It is read-only
// over the group store and user directory and never returns an error: a
// name that matches nothing resolves to an Unresolved principal, which is a
// normal, representable outcome.
type Registry struct {
	groups *group.Store
	users  user.Directory
}

// New creates a registry over the given stores.
func New(groups *group.Store, users user.Directory) *Registry {
	return &Registry{groups: groups, users: users}
}

// Resolve maps name to a principal, first match wins:
//
//  1. a built-in role name (case-sensitive); this always wins, so a group
//     or user named like a built-in role can never shadow it
//  2. an existing group name
//  3. a known user's login, full, or wiki name
//  4. otherwise an Unresolved placeholder
func (r *Registry) Resolve(name string) principal.Principal {
	if role, ok := principal.BuiltinRoleByName(name); ok {
		return role
	}
	if r.groups != nil {
		if gp := r.groups.FindRole(name); gp != nil {
			return gp
		}
	}
	if r.users != nil {
		if _, kind, ok := r.users.Lookup(name); ok {
			return principal.NewUser(name, kind)
		}
	}
	return principal.NewUnresolved(name)
}
