package session

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/principal"
)

// CacheStats is a snapshot of effective-role cache traffic for the metrics
// layer.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

type cachedRoles struct {
	version    uint64
	generation uint64
	roles      principal.Set
}

// RoleComputer derives a session's effective principal set from its
// authentication state, its custom roles, and its group memberships.
// Results are cached per session in an LRU keyed by (session ID, version);
// any group mutation purges the cache wholesale, and a session transition
// changes its version, so stale results are never served. Each entry also
// carries the invalidation generation it was computed under: a fill that
// lands after a concurrent purge is stamped with the old generation and
// rejected on the next read instead of resurrecting pre-mutation roles.
type RoleComputer struct {
	groups     *group.Store
	cache      *lru.Cache[string, cachedRoles]
	generation atomic.Uint64
	hits       atomic.Uint64
	misses     atomic.Uint64
}

// NewRoleComputer creates a role computer over the given group store.
// dispatcher may be nil when no cache invalidation wiring is needed (tests).
func NewRoleComputer(groups *group.Store, cacheSize int, dispatcher *event.Dispatcher) (*RoleComputer, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, cachedRoles](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create role cache: %w", err)
	}
	rc := &RoleComputer{groups: groups, cache: cache}
	if dispatcher != nil {
		dispatcher.Subscribe(func(e event.Event) {
			switch e.Type {
			case event.TypeGroupAdd, event.TypeGroupAddMember,
				event.TypeGroupRemoveMember, event.TypeGroupRemove:
				rc.generation.Add(1)
				rc.cache.Purge()
			}
		})
	}
	return rc, nil
}

// EffectiveRoles returns the full principal set the session currently holds:
//
//	anonymous:     {Anonymous, All}
//	asserted:      {Asserted, All} plus pre-auth custom roles only
//	authenticated: {Authenticated, All} plus custom roles, group
//	               memberships, and the identity principals themselves
func (rc *RoleComputer) EffectiveRoles(s *Session) principal.Set {
	key := s.ID()
	version := s.Version()
	gen := rc.generation.Load()
	if entry, ok := rc.cache.Get(key); ok && entry.version == version && entry.generation == gen {
		rc.hits.Add(1)
		return entry.roles
	}
	rc.misses.Add(1)

	roles := principal.NewSet(principal.All)
	switch s.State() {
	case StateAnonymous:
		roles.Add(principal.Anonymous)

	case StateAsserted:
		roles.Add(principal.Asserted)
		for _, g := range s.CustomRoles() {
			if g.PreAuth {
				roles.Add(g.Role)
			}
		}

	case StateAuthenticated:
		roles.Add(principal.Authenticated)
		for _, g := range s.CustomRoles() {
			roles.Add(g.Role)
		}
		for _, gp := range rc.groups.RolesOf(s) {
			roles.Add(gp)
		}
		for _, p := range s.Principals() {
			roles.Add(p)
		}
	}

	rc.cache.Add(key, cachedRoles{version: version, generation: gen, roles: roles})
	return roles
}

// HasRoleOrPrincipal reports whether target is in the session's effective
// principal set, by name. This is the one membership primitive the ACL scan
// and the role checks share; the name-equality semantics live here and
// nowhere else.
func (rc *RoleComputer) HasRoleOrPrincipal(s *Session, target principal.Principal) bool {
	if target == nil {
		return false
	}
	return rc.EffectiveRoles(s).Contains(target)
}

// Stats returns a snapshot of the cache counters.
func (rc *RoleComputer) Stats() CacheStats {
	return CacheStats{Hits: rc.hits.Load(), Misses: rc.misses.Load()}
}

// Invalidate drops any cached roles for the given session.
func (rc *RoleComputer) Invalidate(s *Session) {
	rc.cache.Remove(s.ID())
}
