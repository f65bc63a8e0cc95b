// Package session models a user's authentication lifecycle and derives the
// effective principal set permission checks run against.
//
// A Session moves anonymous → asserted → authenticated, monotonically;
// Logout is the only way back. The states differ sharply in what they grant:
// asserted sessions get no group memberships and no custom roles (except
// those explicitly marked pre-auth), because a merely claimed identity must
// not inherit anything that was granted to the verified one.
//
// RoleComputer turns a session into its effective roles and hosts
// HasRoleOrPrincipal, the single name-equality membership primitive shared
// by ACL matching and role checks. Results are LRU-cached per session and
// invalidated on any group mutation or session state transition.
package session
