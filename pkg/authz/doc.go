// Package authz is the permission evaluation engine. It combines the
// session's effective roles, page ACLs with inheritance, and the static
// security policy into a single allow/deny answer per check.
//
// A resource check runs three tiers in order: the administrative
// all-permission short circuit, then the resource's ACL when one resolves,
// then the static policy. A resolved ACL is authoritative; the static
// policy is consulted only when no ACL protects the resource.
package authz
