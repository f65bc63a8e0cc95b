package group

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/principal"
)

// Subject is the slice of a session the store needs for membership
// evaluation: its authentication state and its identity principals. The
// session package implements it; the store deliberately does not depend on
// sessions directly.
type Subject interface {
	IsAuthenticated() bool
	Principals() []principal.Principal
}

// Database is the optional write-through persistence backend. Only member
// names are persisted; identity is name-only, so the variant information is
// recovered lazily when names are re-resolved.
type Database interface {
	SaveGroup(g *Group) error
	DeleteGroup(name string) error
	LoadAll() ([]*Group, error)
}

// Store owns the named groups and their membership. Reads take a shared
// lock; mutations take the write lock, commit (including write-through
// persistence), and then publish their events synchronously on the writer's
// goroutine. Readers never observe a partially applied membership change.
type Store struct {
	mu         sync.RWMutex
	groups     map[string]*Group
	dispatcher *event.Dispatcher
	db         Database
}

// NewStore creates a group store publishing to dispatcher. db may be nil for
// a purely in-memory store; if non-nil, existing groups are loaded from it.
func NewStore(dispatcher *event.Dispatcher, db Database) (*Store, error) {
	s := &Store{
		groups:     make(map[string]*Group),
		dispatcher: dispatcher,
		db:         db,
	}
	if db != nil {
		loaded, err := db.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load groups: %w", err)
		}
		for _, g := range loaded {
			s.groups[g.Name()] = g.clone()
		}
	}
	return s, nil
}

// CreateOrReplace stores g, replacing any existing group with the same name.
// actor is recorded for auditing by callers; the store itself only validates
// and commits. A name colliding with a built-in role is rejected with
// ErrIllegalGroupName and nothing is stored.
//
// After commit the store fires one group.add event, then one member-delta
// event per difference from the previous membership, removals before
// additions, in the order the deltas were applied.
func (s *Store) CreateOrReplace(actor Subject, g *Group) error {
	if principal.IsBuiltinRoleName(g.Name()) {
		return fmt.Errorf("%w: %q is a reserved role name", ErrIllegalGroupName, g.Name())
	}

	next := g.clone()

	s.mu.Lock()
	prev := s.groups[g.Name()]

	if s.db != nil {
		if err := s.db.SaveGroup(next); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to persist group %q: %w", g.Name(), err)
		}
	}
	s.groups[g.Name()] = next

	events := []event.Event{{Type: event.TypeGroupAdd, Group: g.Name(), At: time.Now()}}
	for _, name := range memberDelta(prev, next) {
		events = append(events, event.Event{Type: event.TypeGroupRemoveMember, Group: g.Name(), Member: name, At: time.Now()})
	}
	for _, name := range memberDelta(next, prev) {
		events = append(events, event.Event{Type: event.TypeGroupAddMember, Group: g.Name(), Member: name, At: time.Now()})
	}
	s.mu.Unlock()

	s.publish(events)
	return nil
}

// Get returns a copy of the named group, or ErrNoSuchPrincipal.
func (s *Store) Get(name string) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: group %q", ErrNoSuchPrincipal, name)
	}
	return g.clone(), nil
}

// Remove deletes the named group. Returns ErrNoSuchPrincipal if it does not
// exist; on success fires a single group.remove event post-commit.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	if _, ok := s.groups[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %q", ErrNoSuchPrincipal, name)
	}
	if s.db != nil {
		if err := s.db.DeleteGroup(name); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to delete group %q: %w", name, err)
		}
	}
	delete(s.groups, name)
	s.mu.Unlock()

	s.publish([]event.Event{{Type: event.TypeGroupRemove, Group: name, At: time.Now()}})
	return nil
}

// AddMember adds p to the named group and fires group.add.member.
func (s *Store) AddMember(name string, p principal.Principal) error {
	s.mu.Lock()
	g, ok := s.groups[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %q", ErrNoSuchPrincipal, name)
	}
	if g.IsMember(p) {
		s.mu.Unlock()
		return nil
	}
	next := g.clone()
	next.Add(p)
	if s.db != nil {
		if err := s.db.SaveGroup(next); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to persist group %q: %w", name, err)
		}
	}
	s.groups[name] = next
	s.mu.Unlock()

	s.publish([]event.Event{{Type: event.TypeGroupAddMember, Group: name, Member: p.Name(), At: time.Now()}})
	return nil
}

// RemoveMember removes p from the named group and fires group.remove.member.
func (s *Store) RemoveMember(name string, p principal.Principal) error {
	s.mu.Lock()
	g, ok := s.groups[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %q", ErrNoSuchPrincipal, name)
	}
	if !g.IsMember(p) {
		s.mu.Unlock()
		return nil
	}
	next := g.clone()
	next.Remove(p)
	if s.db != nil {
		if err := s.db.SaveGroup(next); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to persist group %q: %w", name, err)
		}
	}
	s.groups[name] = next
	s.mu.Unlock()

	s.publish([]event.Event{{Type: event.TypeGroupRemoveMember, Group: name, Member: p.Name(), At: time.Now()}})
	return nil
}

// FindRole returns the group principal for name, or nil if no such group
// exists. It never returns an error; authorization uses it as a null-safe
// alias lookup.
func (s *Store) FindRole(name string) principal.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.groups[name]; ok {
		p := principal.NewGroup(name)
		return p
	}
	return nil
}

// RolesOf returns every group principal the subject's identity principals
// belong to. Membership is evaluated only for authenticated subjects:
// asserted and anonymous identities never inherit group-granted permissions,
// regardless of what the membership data says.
func (s *Store) RolesOf(sub Subject) []principal.Group {
	if sub == nil || !sub.IsAuthenticated() {
		return nil
	}
	identities := sub.Principals()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var roles []principal.Group
	for _, g := range s.groups {
		for _, id := range identities {
			if g.IsMember(id) {
				roles = append(roles, g.Principal())
				break
			}
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name() < roles[j].Name() })
	return roles
}

// Names returns the stored group names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) publish(events []event.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, e := range events {
		s.dispatcher.Publish(e)
	}
}

// memberDelta returns names present in a but not in b, sorted. Either side
// may be nil.
func memberDelta(a, b *Group) []string {
	if a == nil {
		return nil
	}
	var out []string
	for _, m := range a.Members() {
		if b == nil || !b.IsMember(m) {
			out = append(out, m.Name())
		}
	}
	sort.Strings(out)
	return out
}
