package authz

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/observability"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/session"
)

const decisionCacheName = "decision"

// DecisionCache caches permission check outcomes in a process-local LRU
// with an optional Redis second tier shared between replicas.
//
// Invalidation is by generation: every group mutation or policy reload bumps
// a generation counter that is part of every cache key, so all prior entries
// become unreachable at once. Session state changes need no handling here
// because the session version is also part of the key.
type DecisionCache struct {
	l1         *lru.Cache[string, bool]
	rdb        *redis.Client
	ttl        time.Duration
	generation atomic.Uint64
	metrics    *observability.Metrics
}

// NewDecisionCache creates a cache with the given L1 size. rdb may be nil
// for a purely local cache; dispatcher may be nil when no invalidation
// wiring is needed (tests).
func NewDecisionCache(size int, rdb *redis.Client, ttl time.Duration, dispatcher *event.Dispatcher) (*DecisionCache, error) {
	if size <= 0 {
		size = 4096
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	l1, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision cache: %w", err)
	}
	c := &DecisionCache{l1: l1, rdb: rdb, ttl: ttl}
	if dispatcher != nil {
		dispatcher.Subscribe(func(e event.Event) {
			switch e.Type {
			case event.TypeGroupAdd, event.TypeGroupAddMember,
				event.TypeGroupRemoveMember, event.TypeGroupRemove,
				event.TypePolicyReload:
				c.Invalidate()
			}
		})
	}
	return c, nil
}

// WithMetrics attaches Prometheus metrics for hit/miss accounting.
func (c *DecisionCache) WithMetrics(m *observability.Metrics) *DecisionCache {
	c.metrics = m
	return c
}

// Invalidate makes every cached decision unreachable.
func (c *DecisionCache) Invalidate() {
	c.generation.Add(1)
	c.l1.Purge()
}

// Generation returns the current invalidation generation. Callers capture it
// once before Get and pass the same value to the matching Put, so a decision
// computed before an invalidation is stored under the old generation and
// never served.
func (c *DecisionCache) Generation() uint64 {
	return c.generation.Load()
}

func (c *DecisionCache) key(gen uint64, s *session.Session, resource string, perm policy.Permission) string {
	return fmt.Sprintf("authz:%d:%s:%d:%s:%s",
		gen, s.ID(), s.Version(), resource, perm)
}

// Get returns a cached decision and whether one was found. A Redis error is
// treated as a miss; the cache never fails a check.
func (c *DecisionCache) Get(ctx context.Context, gen uint64, s *session.Session, resource string, perm policy.Permission) (bool, bool) {
	key := c.key(gen, s, resource, perm)
	if allowed, ok := c.l1.Get(key); ok {
		c.hit()
		return allowed, true
	}
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, key).Result()
		if err == nil && (val == "0" || val == "1") {
			allowed := val == "1"
			c.l1.Add(key, allowed)
			c.hit()
			return allowed, true
		}
	}
	c.miss()
	return false, false
}

// Put stores a decision in both tiers, keyed under the generation the caller
// observed at Get time. When an invalidation raced the evaluation, gen is
// stale and the entry lands under a key no future Get will compute.
func (c *DecisionCache) Put(ctx context.Context, gen uint64, s *session.Session, resource string, perm policy.Permission, allowed bool) {
	key := c.key(gen, s, resource, perm)
	c.l1.Add(key, allowed)
	if c.rdb != nil {
		val := "0"
		if allowed {
			val = "1"
		}
		// Best effort: a failed write just means a future miss.
		c.rdb.Set(ctx, key, val, c.ttl)
	}
}

func (c *DecisionCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(decisionCacheName).Inc()
	}
}

func (c *DecisionCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(decisionCacheName).Inc()
	}
}
