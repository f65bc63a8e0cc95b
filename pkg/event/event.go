package event

import "time"

// Type categorizes a mutation event.
type Type string

const (
	// TypeGroupAdd fires after a group is created or replaced.
	TypeGroupAdd Type = "group.add"
	// TypeGroupAddMember fires once per member added to a group.
	TypeGroupAddMember Type = "group.add.member"
	// TypeGroupRemoveMember fires once per member removed from a group.
	TypeGroupRemoveMember Type = "group.remove.member"
	// TypeGroupRemove fires after a group is deleted.
	TypeGroupRemove Type = "group.remove"
	// TypePolicyReload fires after the static policy table is replaced.
	TypePolicyReload Type = "policy.reload"
)

// Event is a single mutation notification. Member is set only for the
// per-member delta types.
type Event struct {
	Type   Type
	Group  string
	Member string
	At     time.Time
}

// Listener receives events synchronously on the publishing goroutine.
// Listeners must be fast; they run inside the mutation's critical path
// (cache invalidation, not network calls).
type Listener func(Event)
