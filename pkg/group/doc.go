// Package group owns named groups and their membership.
//
// The Store is the authoritative in-memory registry. All mutations take the
// store's write lock, commit (including optional write-through SQLite
// persistence), and then fire typed events synchronously on the writer's
// goroutine: one group-level event plus one event per member delta, removals
// before additions. Listeners are expected to be fast; they exist for cache
// invalidation, not network calls.
//
// Two policies live here:
//
//   - Group names colliding with built-in role names are rejected
//     (ErrIllegalGroupName) so a group can never spoof a role.
//   - RolesOf evaluates membership only for authenticated subjects. An
//     asserted or anonymous identity never inherits group-granted
//     permissions even when the membership data would match.
package group
