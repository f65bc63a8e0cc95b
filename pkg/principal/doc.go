// Package principal defines the identity model for the Bramble authorization
// engine.
//
// # Overview
//
// A Principal is anything permissions can be granted to. Five variants exist:
//
//	BuiltinRole  - Anonymous, Asserted, Authenticated, All (fixed, global)
//	CustomRole   - container-supplied role outside the built-in set
//	Group        - reference to an explicitly managed wiki group
//	User         - a user under one of three equivalent name forms
//	Unresolved   - a name that resolved to nothing known (not an error)
//
// # Name equality
//
// All identity comparisons in the engine go through SameName, which compares
// by name string only. A User built from a login name therefore matches an
// ACL entry naming the same string even if that entry was constructed
// through a completely different path. Set enforces the same semantics for
// collections.
//
// # Reserved names
//
// The four built-in role names are reserved. IsBuiltinRoleName is consulted
// both when resolving bare names and when creating groups, so user-created
// entities can never shadow a built-in role.
package principal
