package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/principal"
)

func TestProfilePrincipals(t *testing.T) {
	p := &Profile{LoginName: "janne", FullName: "Janne Jalkanen", WikiName: "JanneJalkanen"}

	principals := p.Principals()
	require.Len(t, principals, 3)
	assert.Equal(t, principal.NewUser("janne", principal.KindLogin), principals[0])
	assert.Equal(t, principal.NewUser("Janne Jalkanen", principal.KindFull), principals[1])
	assert.Equal(t, principal.NewUser("JanneJalkanen", principal.KindWiki), principals[2])
}

func TestWikiNameOf(t *testing.T) {
	assert.Equal(t, "JanneJalkanen", WikiNameOf("Janne Jalkanen"))
	assert.Equal(t, "Alice", WikiNameOf("Alice"))
}

func TestMemoryDirectoryLookup(t *testing.T) {
	d := NewMemoryDirectory()
	d.Add(Profile{LoginName: "alice", FullName: "Alice Archer"})

	tests := []struct {
		name string
		kind principal.UserKind
	}{
		{"alice", principal.KindLogin},
		{"Alice Archer", principal.KindFull},
		{"AliceArcher", principal.KindWiki}, // derived wiki name
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, kind, ok := d.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, "alice", p.LoginName)
		})
	}

	_, _, ok := d.Lookup("nobody")
	assert.False(t, ok)
}

func TestMemoryDirectoryAll(t *testing.T) {
	d := NewMemoryDirectory()
	d.Add(Profile{LoginName: "bob", FullName: "Bob Builder"})
	d.Add(Profile{LoginName: "alice", FullName: "Alice Archer"})

	all := d.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].LoginName)
	assert.Equal(t, "bob", all[1].LoginName)
}

func TestSQLiteDirectoryRoundTrip(t *testing.T) {
	d, err := OpenSQLiteDirectory(":memory:")
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Save(Profile{LoginName: "alice", FullName: "Alice Archer"}))

	p, kind, ok := d.Lookup("AliceArcher")
	require.True(t, ok)
	assert.Equal(t, principal.KindWiki, kind)
	assert.Equal(t, "Alice Archer", p.FullName)

	// Upsert by login name.
	require.NoError(t, d.Save(Profile{LoginName: "alice", FullName: "Alice B. Archer"}))
	p, kind, ok = d.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, principal.KindLogin, kind)
	assert.Equal(t, "Alice B. Archer", p.FullName)

	_, _, ok = d.Lookup("nobody")
	assert.False(t, ok)
}
