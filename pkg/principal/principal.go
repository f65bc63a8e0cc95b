package principal

// Principal is any identity-like entity that permissions can be granted to:
// a built-in role, a container-supplied custom role, a group, a user, or a
// name that resolved to nothing known.
//
// Membership and ACL lookups throughout the engine compare principals by
// name only (see SameName). A user principal built from a login name must
// match an ACL entry constructed from the same literal name through any
// other code path.
type Principal interface {
	// Name returns the principal's identifying name.
	Name() string
}

// BuiltinRole is one of the four fixed, global authentication-state roles.
// The set is immutable; the names are reserved and case-sensitive.
type BuiltinRole struct {
	name string
}

// The built-in roles.
var (
	Anonymous     = BuiltinRole{"Anonymous"}
	Asserted      = BuiltinRole{"Asserted"}
	Authenticated = BuiltinRole{"Authenticated"}
	All           = BuiltinRole{"All"}
)

// Name returns the role name.
func (r BuiltinRole) Name() string { return r.name }

// IsBuiltinRoleName reports whether name collides with a reserved built-in
// role name. Group creation and principal resolution both consult this so
// that a user or group can never spoof a built-in role.
func IsBuiltinRoleName(name string) bool {
	switch name {
	case Anonymous.name, Asserted.name, Authenticated.name, All.name:
		return true
	}
	return false
}

// BuiltinRoleByName returns the built-in role for name, if any.
func BuiltinRoleByName(name string) (BuiltinRole, bool) {
	switch name {
	case Anonymous.name:
		return Anonymous, true
	case Asserted.name:
		return Asserted, true
	case Authenticated.name:
		return Authenticated, true
	case All.name:
		return All, true
	}
	return BuiltinRole{}, false
}

// CustomRole is a container-supplied role that is not in the built-in set.
type CustomRole struct {
	name string
}

// NewCustomRole creates a custom role principal.
func NewCustomRole(name string) CustomRole { return CustomRole{name: name} }

// Name returns the role name.
func (r CustomRole) Name() string { return r.name }

// Group names a wiki group. The group's membership lives in the group store;
// this principal is only the reference used in ACLs and role sets.
type Group struct {
	name string
}

// NewGroup creates a group principal.
func NewGroup(name string) Group { return Group{name: name} }

// Name returns the group name.
func (g Group) Name() string { return g.name }

// UserKind identifies which of a user's three equivalent name forms a
// UserPrincipal was built from.
type UserKind int

const (
	// KindLogin is the name the user logs in with.
	KindLogin UserKind = iota
	// KindFull is the user's full name.
	KindFull
	// KindWiki is the CamelCase wiki name derived from the full name.
	KindWiki
)

func (k UserKind) String() string {
	switch k {
	case KindLogin:
		return "login"
	case KindFull:
		return "full"
	case KindWiki:
		return "wiki"
	}
	return "unknown"
}

// User is a user principal under one of its three name forms. All three
// forms denote the same identity; equality is by name, not by kind.
type User struct {
	name string
	kind UserKind
}

// NewUser creates a user principal.
func NewUser(name string, kind UserKind) User { return User{name: name, kind: kind} }

// Name returns the user name in the form this principal was built from.
func (u User) Name() string { return u.name }

// Kind returns which name form this principal carries.
func (u User) Kind() UserKind { return u.kind }

// Unresolved is a placeholder for a name that resolved to nothing known.
// It is not an error: ACL text referencing an account that does not exist
// yet is preserved as-is and re-evaluated on later checks.
type Unresolved struct {
	name string
}

// NewUnresolved creates an unresolved-name principal.
func NewUnresolved(name string) Unresolved { return Unresolved{name: name} }

// Name returns the unresolved name.
func (u Unresolved) Name() string { return u.name }

// SameName reports whether two principals denote the same name. This is the
// single equality primitive used by every membership and ACL comparison in
// the engine, deliberately ignoring the concrete variant.
func SameName(a, b Principal) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Name() == b.Name()
}

// IsRole reports whether p is a role-like principal (built-in role, custom
// role, or group). IsUserInRole answers false for anything else.
func IsRole(p Principal) bool {
	switch p.(type) {
	case BuiltinRole, CustomRole, Group:
		return true
	}
	return false
}
