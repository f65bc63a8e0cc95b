package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/principal"
	"github.com/bramblewiki/bramble/pkg/user"
)

func newRegistry(t *testing.T) (*Registry, *group.Store, *user.MemoryDirectory) {
	t.Helper()
	gs, err := group.NewStore(event.NewDispatcher(), nil)
	require.NoError(t, err)
	users := user.NewMemoryDirectory()
	return New(gs, users), gs, users
}

func TestResolvePrecedence(t *testing.T) {
	r, gs, users := newRegistry(t)
	require.NoError(t, gs.CreateOrReplace(nil, group.New("Engineering")))
	users.Add(user.Profile{LoginName: "alice", FullName: "Alice Archer"})

	assert.Equal(t, principal.Authenticated, r.Resolve("Authenticated"))
	assert.Equal(t, principal.NewGroup("Engineering"), r.Resolve("Engineering"))
	assert.Equal(t, principal.NewUser("alice", principal.KindLogin), r.Resolve("alice"))
	assert.Equal(t, principal.NewUser("Alice Archer", principal.KindFull), r.Resolve("Alice Archer"))
	assert.Equal(t, principal.NewUser("AliceArcher", principal.KindWiki), r.Resolve("AliceArcher"))
	assert.Equal(t, principal.NewUnresolved("Nobody"), r.Resolve("Nobody"))
}

func TestResolveBuiltinNamesCannotBeShadowed(t *testing.T) {
	r, gs, users := newRegistry(t)

	// A group with a built-in role name cannot even be created...
	err := gs.CreateOrReplace(nil, group.New("Authenticated"))
	assert.ErrorIs(t, err, group.ErrIllegalGroupName)

	// ...and a user carrying the name still loses to the built-in role.
	users.Add(user.Profile{LoginName: "All", FullName: "All"})
	resolved := r.Resolve("All")
	assert.Equal(t, principal.All, resolved)

	// Repeatedly: resolution is idempotent and never flips to the user.
	assert.Equal(t, principal.All, r.Resolve("All"))
}

func TestResolveCaseSensitivity(t *testing.T) {
	r, _, _ := newRegistry(t)

	// Built-in role names are case-sensitive; a different casing resolves
	// as an ordinary (here unknown) name.
	assert.Equal(t, principal.NewUnresolved("authenticated"), r.Resolve("authenticated"))
}

func TestResolveGroupBeatsUser(t *testing.T) {
	r, gs, users := newRegistry(t)
	require.NoError(t, gs.CreateOrReplace(nil, group.New("Phoenix")))
	users.Add(user.Profile{LoginName: "Phoenix", FullName: "Phoenix Wright"})

	assert.Equal(t, principal.NewGroup("Phoenix"), r.Resolve("Phoenix"))
}

func TestResolveWithNilStores(t *testing.T) {
	r := New(nil, nil)
	assert.Equal(t, principal.All, r.Resolve("All"))
	assert.Equal(t, principal.NewUnresolved("alice"), r.Resolve("alice"))
}
