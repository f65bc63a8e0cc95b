package acl

import "github.com/bramblewiki/bramble/pkg/principal"

// Provider is the content layer's surface: for a resource key it supplies
// the resource's own ACL (possibly empty) and, for attachments, the owning
// page's key. The engine never mutates ACLs; they change only when the
// owning page is saved elsewhere in the system.
type Provider interface {
	AclFor(resource string) *Acl
	ParentOf(resource string) (string, bool)
}

// Store performs ACL lookups with inheritance. It is a pure read-side
// component over the injected provider.
type Store struct {
	provider Provider
}

// NewStore creates a store over the given provider.
func NewStore(provider Provider) *Store {
	return &Store{provider: provider}
}

// Resolve returns the effective ACL for a resource: its own ACL when
// non-empty, otherwise the nearest ancestor's (an attachment inherits from
// its owning page; there is no deeper hierarchy). Returns nil when neither
// has entries; the caller then falls back to static policy.
func (s *Store) Resolve(resource string) *Acl {
	a := s.provider.AclFor(resource)
	if !a.IsEmpty() {
		return a
	}
	if parent, ok := s.provider.ParentOf(resource); ok {
		if pa := s.provider.AclFor(parent); !pa.IsEmpty() {
			return pa
		}
	}
	return nil
}

// EntryFor resolves the resource's effective ACL and returns the first entry
// held by the caller, or nil when there is no ACL or no entry matches.
func (s *Store) EntryFor(resource string, holds func(principal.Principal) bool) *Entry {
	a := s.Resolve(resource)
	if a == nil {
		return nil
	}
	return a.FirstMatch(holds)
}
