package authz

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bramblewiki/bramble/pkg/acl"
	"github.com/bramblewiki/bramble/pkg/observability"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/principal"
	"github.com/bramblewiki/bramble/pkg/session"
)

// DecisionSource labels which tier produced a decision, for metrics and
// tracing.
type DecisionSource string

const (
	SourceAdmin  DecisionSource = "admin"
	SourceACL    DecisionSource = "acl"
	SourceStatic DecisionSource = "static"
	SourceCache  DecisionSource = "cache"
)

// Evaluator answers permission checks. It is stateless between checks
// except for the optional decision cache, so it is safe for concurrent use.
type Evaluator struct {
	roles   *session.RoleComputer
	acls    *acl.Store
	source  *policy.Source
	cache   *DecisionCache
	metrics *observability.Metrics
	logger  *observability.Logger
	tracer  trace.Tracer
}

// NewEvaluator creates an evaluator over the given role computer, ACL store,
// and policy source.
func NewEvaluator(roles *session.RoleComputer, acls *acl.Store, source *policy.Source) *Evaluator {
	return &Evaluator{
		roles:  roles,
		acls:   acls,
		source: source,
		tracer: otel.Tracer("github.com/bramblewiki/bramble/pkg/authz"),
	}
}

// WithCache attaches a decision cache.
func (e *Evaluator) WithCache(c *DecisionCache) *Evaluator {
	e.cache = c
	return e
}

// WithMetrics attaches Prometheus metrics.
func (e *Evaluator) WithMetrics(m *observability.Metrics) *Evaluator {
	e.metrics = m
	return e
}

// WithLogger attaches a logger for per-decision debug logging.
func (e *Evaluator) WithLogger(l *observability.Logger) *Evaluator {
	e.logger = l
	return e
}

// CheckPermission decides whether the session may perform perm on the named
// resource. The tiers, in order:
//
//  1. a role holding allPermission in the static policy grants everything,
//     page delete included
//  2. when an ACL resolves for the resource (its own or, for attachments,
//     the owning page's), the first entry whose principal the session holds
//     decides alone; no entry matching means deny, and the static policy is
//     never consulted
//  3. with no ACL, the static policy decides
//
// Entry actions grant through permission implication, so an ACL entry
// allowing edit also allows view.
func (e *Evaluator) CheckPermission(ctx context.Context, s *session.Session, resource string, perm policy.Permission) bool {
	ctx, span := e.tracer.Start(ctx, "authz.CheckPermission",
		trace.WithAttributes(
			attribute.String("authz.resource", resource),
			attribute.String("authz.permission", string(perm)),
		))
	defer span.End()
	start := time.Now()

	// The generation is captured once so that a decision computed here is
	// stored under the generation it was evaluated against. An invalidation
	// firing mid-evaluation then leaves the entry unreachable instead of
	// reviving a stale decision under the new generation.
	var gen uint64
	if e.cache != nil {
		gen = e.cache.Generation()
		if allowed, ok := e.cache.Get(ctx, gen, s, resource, perm); ok {
			e.record(span, perm, allowed, SourceCache, start)
			return allowed
		}
	}

	allowed, source := e.evaluate(s, resource, perm)

	if e.cache != nil {
		e.cache.Put(ctx, gen, s, resource, perm, allowed)
	}
	e.record(span, perm, allowed, source, start)
	if e.logger != nil && !allowed {
		e.logger.WithFields(map[string]interface{}{
			"session":    s.DisplayName(),
			"resource":   resource,
			"permission": string(perm),
			"source":     string(source),
		}).Debug("permission denied")
	}
	return allowed
}

func (e *Evaluator) evaluate(s *session.Session, resource string, perm policy.Permission) (bool, DecisionSource) {
	roles := e.roles.EffectiveRoles(s)
	table := e.source.Current()

	for _, name := range roles.Names() {
		if table.HasAllPermission(name) {
			return true, SourceAdmin
		}
	}

	if a := e.acls.Resolve(resource); a != nil {
		entry := a.FirstMatch(roles.Contains)
		if entry == nil {
			return false, SourceACL
		}
		for _, action := range entry.Actions {
			if policy.Permission(action).Implies(perm) {
				return true, SourceACL
			}
		}
		return false, SourceACL
	}

	return e.staticAllows(roles, table, perm), SourceStatic
}

// CheckStaticPermission decides perm against the static policy alone,
// ignoring ACLs. This is the check for wiki-level operations such as login
// or createGroups that have no resource to carry an ACL. Note that at this
// tier allPermission does not imply page delete.
func (e *Evaluator) CheckStaticPermission(ctx context.Context, s *session.Session, perm policy.Permission) bool {
	_, span := e.tracer.Start(ctx, "authz.CheckStaticPermission",
		trace.WithAttributes(attribute.String("authz.permission", string(perm))))
	defer span.End()
	start := time.Now()

	allowed := e.staticAllows(e.roles.EffectiveRoles(s), e.source.Current(), perm)
	e.record(span, perm, allowed, SourceStatic, start)
	return allowed
}

func (e *Evaluator) staticAllows(roles principal.Set, table *policy.Table, perm policy.Permission) bool {
	for _, name := range roles.Names() {
		if table.Allows(name, perm) {
			return true
		}
	}
	return false
}

// EffectiveRoleNames returns the names of every principal the session
// currently holds.
func (e *Evaluator) EffectiveRoleNames(s *session.Session) []string {
	return e.roles.EffectiveRoles(s).Names()
}

// IsUserInRole reports whether the session holds the target as a role. Only
// role-like principals qualify: built-in roles, custom roles, and groups.
// User principals always report false here even when the session carries
// them, so identity checks cannot masquerade as role checks.
func (e *Evaluator) IsUserInRole(s *session.Session, target principal.Principal) bool {
	if !principal.IsRole(target) {
		return false
	}
	return e.roles.HasRoleOrPrincipal(s, target)
}

func (e *Evaluator) record(span trace.Span, perm policy.Permission, allowed bool, source DecisionSource, start time.Time) {
	span.SetAttributes(
		attribute.Bool("authz.allowed", allowed),
		attribute.String("authz.source", string(source)),
	)
	if e.metrics != nil {
		e.metrics.ObserveDecision(string(perm), allowed, string(source), time.Since(start))
	}
}
