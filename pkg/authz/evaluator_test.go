package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/acl"
	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/page"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/principal"
	"github.com/bramblewiki/bramble/pkg/registry"
	"github.com/bramblewiki/bramble/pkg/session"
	"github.com/bramblewiki/bramble/pkg/user"
)

// fixture wires the whole evaluation stack on in-memory stores.
type fixture struct {
	evaluator *Evaluator
	groups    *group.Store
	pages     *page.Repository
	policy    *policy.Source
	users     *user.MemoryDirectory
	events    *event.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := event.NewDispatcher()
	gs, err := group.NewStore(d, nil)
	require.NoError(t, err)
	users := user.NewMemoryDirectory()
	users.Add(user.Profile{LoginName: "alice", FullName: "Alice Archer"})
	users.Add(user.Profile{LoginName: "bob", FullName: "Bob Builder"})

	reg := registry.New(gs, users)
	pages := page.NewRepository(reg.Resolve)

	rc, err := session.NewRoleComputer(gs, 64, d)
	require.NoError(t, err)
	src := policy.NewSource(policy.Default(), d)

	return &fixture{
		evaluator: NewEvaluator(rc, acl.NewStore(pages), src),
		groups:    gs,
		pages:     pages,
		policy:    src,
		users:     users,
		events:    d,
	}
}

func authenticated(login, full string) *session.Session {
	s := session.NewAnonymous()
	s.Authenticate(&user.Profile{
		LoginName: login,
		FullName:  full,
		WikiName:  user.WikiNameOf(full),
	})
	return s
}

func TestAnonymousUnderDefaultPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Main", "plain page", "alice")
	require.NoError(t, err)

	s := session.NewAnonymous()
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermView))
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermEdit))
	assert.False(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermDelete))
	assert.False(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermUpload))
	assert.True(t, f.evaluator.CheckStaticPermission(ctx, s, policy.PermLogin))
}

func TestAuthenticatedUnderDefaultPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Main", "plain page", "alice")
	require.NoError(t, err)

	s := authenticated("alice", "Alice Archer")
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermModify))
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermUpload))
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermRename))
	assert.False(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermDelete))
	assert.True(t, f.evaluator.CheckStaticPermission(ctx, s, policy.PermCreateGroups))
}

func TestAdminAllPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Main", "plain page", "alice")
	require.NoError(t, err)

	admins := group.New("Admin")
	admins.Add(principal.NewUser("alice", principal.KindLogin))
	require.NoError(t, f.groups.CreateOrReplace(nil, admins))

	s := authenticated("alice", "Alice Archer")

	// The resource check treats allPermission as an unconditional grant,
	// delete included.
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermDelete))

	// The static tier does not extend allPermission to delete.
	assert.False(t, f.evaluator.CheckStaticPermission(ctx, s, policy.PermDelete))
	assert.True(t, f.evaluator.CheckStaticPermission(ctx, s, policy.PermCreatePages))
}

func TestAclIsAuthoritativeWhenPresent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Restricted", "[{ALLOW edit Authenticated}]", "alice")
	require.NoError(t, err)

	alice := authenticated("alice", "Alice Archer")
	assert.True(t, f.evaluator.CheckPermission(ctx, alice, "Restricted", policy.PermEdit))
	// The edit grant implies view.
	assert.True(t, f.evaluator.CheckPermission(ctx, alice, "Restricted", policy.PermView))
	assert.False(t, f.evaluator.CheckPermission(ctx, alice, "Restricted", policy.PermDelete))

	// Bob only asserted his name. The default policy would let anyone view,
	// but the page has an ACL, so the ACL alone decides.
	bob := session.NewAnonymous()
	bob.Assert("bob")
	assert.False(t, f.evaluator.CheckPermission(ctx, bob, "Restricted", policy.PermView))
	assert.False(t, f.evaluator.CheckPermission(ctx, bob, "Restricted", policy.PermEdit))
}

func TestAclFirstMatchWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Alice matches the first entry by name; the broader Authenticated
	// entry later in the ACL is never reached.
	_, err := f.pages.Save("Ordered",
		"[{ALLOW view alice}]\n[{ALLOW edit Authenticated}]", "alice")
	require.NoError(t, err)

	alice := authenticated("alice", "Alice Archer")
	assert.True(t, f.evaluator.CheckPermission(ctx, alice, "Ordered", policy.PermView))
	assert.False(t, f.evaluator.CheckPermission(ctx, alice, "Ordered", policy.PermEdit))

	bob := authenticated("bob", "Bob Builder")
	assert.True(t, f.evaluator.CheckPermission(ctx, bob, "Ordered", policy.PermEdit))
}

func TestAttachmentInheritsPageAcl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Secret", "[{ALLOW view alice}]", "alice")
	require.NoError(t, err)
	_, err = f.pages.Attach("Secret", "plan.pdf", "alice", 2048)
	require.NoError(t, err)

	alice := authenticated("alice", "Alice Archer")
	bob := authenticated("bob", "Bob Builder")
	assert.True(t, f.evaluator.CheckPermission(ctx, alice, "Secret/plan.pdf", policy.PermView))
	assert.False(t, f.evaluator.CheckPermission(ctx, bob, "Secret/plan.pdf", policy.PermView))
}

func TestGroupAclEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	eng := group.New("Engineering")
	eng.Add(principal.NewUser("alice", principal.KindLogin))
	require.NoError(t, f.groups.CreateOrReplace(nil, eng))

	_, err := f.pages.Save("TeamPage", "[{ALLOW edit Engineering}]", "alice")
	require.NoError(t, err)

	alice := authenticated("alice", "Alice Archer")
	bob := authenticated("bob", "Bob Builder")
	assert.True(t, f.evaluator.CheckPermission(ctx, alice, "TeamPage", policy.PermEdit))
	assert.False(t, f.evaluator.CheckPermission(ctx, bob, "TeamPage", policy.PermEdit))

	// Membership changes flow through on the next check.
	require.NoError(t, f.groups.AddMember("Engineering", principal.NewUser("bob", principal.KindLogin)))
	assert.True(t, f.evaluator.CheckPermission(ctx, bob, "TeamPage", policy.PermEdit))
}

func TestIsUserInRole(t *testing.T) {
	f := newFixture(t)

	eng := group.New("Engineering")
	eng.Add(principal.NewUser("alice", principal.KindLogin))
	require.NoError(t, f.groups.CreateOrReplace(nil, eng))

	alice := authenticated("alice", "Alice Archer")
	assert.True(t, f.evaluator.IsUserInRole(alice, principal.Authenticated))
	assert.True(t, f.evaluator.IsUserInRole(alice, principal.NewGroup("Engineering")))
	assert.False(t, f.evaluator.IsUserInRole(alice, principal.Anonymous))

	// A user principal is not a role, even though the session holds it.
	assert.False(t, f.evaluator.IsUserInRole(alice, principal.NewUser("alice", principal.KindLogin)))
	assert.False(t, f.evaluator.IsUserInRole(alice, nil))
}

func TestPolicyReplaceChangesStaticDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Main", "plain page", "alice")
	require.NoError(t, err)

	s := session.NewAnonymous()
	require.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermEdit))

	locked, err := policy.NewTable(map[string][]policy.Permission{
		"All":           {policy.PermView},
		"Authenticated": {policy.PermView, policy.PermEdit},
	})
	require.NoError(t, err)
	f.policy.Replace(locked)

	assert.False(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermEdit))
	assert.True(t, f.evaluator.CheckPermission(ctx, s, "Main", policy.PermView))
}

func TestUnknownAclActionNeverMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.pages.Save("Odd", "[{ALLOW frobnicate alice}]", "alice")
	require.NoError(t, err)

	alice := authenticated("alice", "Alice Archer")
	// Alice matches the entry, so the ACL decides, and the unknown action
	// grants nothing.
	assert.False(t, f.evaluator.CheckPermission(ctx, alice, "Odd", policy.PermView))
}
