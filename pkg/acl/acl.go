package acl

import (
	"github.com/bramblewiki/bramble/pkg/principal"
)

// Entry pairs a principal with the actions it is allowed on the owning
// resource. Actions are plain strings; permission implication is applied by
// the evaluator, not here.
type Entry struct {
	Principal principal.Principal
	Actions   []string
}

// Allows reports whether the entry names the given action literally.
func (e *Entry) Allows(action string) bool {
	for _, a := range e.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Acl is an ordered list of entries attached to exactly one resource. It is
// a value object: the engine receives it per resource read and never mutates
// one in place.
type Acl struct {
	entries []Entry
}

// New creates an ACL from entries, preserving order.
func New(entries ...Entry) *Acl {
	return &Acl{entries: entries}
}

// Add appends an entry. If an entry for the same principal name already
// exists its action set is extended instead, keeping the ACL's first-match
// scan unambiguous.
func (a *Acl) Add(e Entry) {
	for i := range a.entries {
		if principal.SameName(a.entries[i].Principal, e.Principal) {
			for _, action := range e.Actions {
				if !a.entries[i].Allows(action) {
					a.entries[i].Actions = append(a.entries[i].Actions, action)
				}
			}
			return
		}
	}
	a.entries = append(a.entries, e)
}

// Entries returns the entries in insertion order.
func (a *Acl) Entries() []Entry {
	return a.entries
}

// IsEmpty reports whether the ACL has no entries. An empty ACL behaves like
// no ACL at all: lookups fall through to inheritance and static policy.
func (a *Acl) IsEmpty() bool {
	return a == nil || len(a.entries) == 0
}

// FirstMatch scans the entries in insertion order and returns the first one
// whose principal the caller holds, as decided by holds (typically the
// session's HasRoleOrPrincipal). There is no merging of multiple matching
// entries; the first structural match wins.
func (a *Acl) FirstMatch(holds func(principal.Principal) bool) *Entry {
	if a == nil {
		return nil
	}
	for i := range a.entries {
		if holds(a.entries[i].Principal) {
			return &a.entries[i]
		}
	}
	return nil
}
