package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRoleNames(t *testing.T) {
	tests := []struct {
		name    string
		role    BuiltinRole
		literal string
	}{
		{"anonymous", Anonymous, "Anonymous"},
		{"asserted", Asserted, "Asserted"},
		{"authenticated", Authenticated, "Authenticated"},
		{"all", All, "All"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.literal, tt.role.Name())
			assert.True(t, IsBuiltinRoleName(tt.literal))

			got, ok := BuiltinRoleByName(tt.literal)
			require.True(t, ok)
			assert.Equal(t, tt.role, got)
		})
	}
}

func TestBuiltinRoleNamesAreCaseSensitive(t *testing.T) {
	assert.False(t, IsBuiltinRoleName("authenticated"))
	assert.False(t, IsBuiltinRoleName("ALL"))
	assert.False(t, IsBuiltinRoleName("anonymous"))

	_, ok := BuiltinRoleByName("asserted")
	assert.False(t, ok)
}

func TestSameNameIgnoresVariant(t *testing.T) {
	// The same name built through different code paths must compare equal.
	asUser := NewUser("Alice", KindLogin)
	asFullName := NewUser("Alice", KindFull)
	asUnresolved := NewUnresolved("Alice")

	assert.True(t, SameName(asUser, asFullName))
	assert.True(t, SameName(asUser, asUnresolved))
	assert.False(t, SameName(asUser, NewUser("Bob", KindLogin)))
	assert.False(t, SameName(nil, asUser))
	assert.False(t, SameName(asUser, nil))
}

func TestUserKinds(t *testing.T) {
	u := NewUser("JanneJalkanen", KindWiki)
	assert.Equal(t, "JanneJalkanen", u.Name())
	assert.Equal(t, KindWiki, u.Kind())
	assert.Equal(t, "wiki", u.Kind().String())
	assert.Equal(t, "login", KindLogin.String())
	assert.Equal(t, "full", KindFull.String())
}

func TestIsRole(t *testing.T) {
	assert.True(t, IsRole(Authenticated))
	assert.True(t, IsRole(NewCustomRole("Manager")))
	assert.True(t, IsRole(NewGroup("Engineering")))
	assert.False(t, IsRole(NewUser("Alice", KindLogin)))
	assert.False(t, IsRole(NewUnresolved("Nobody")))
}

func TestSetCollapsesByName(t *testing.T) {
	s := NewSet(NewUser("Alice", KindLogin))
	s.Add(NewUser("Alice", KindFull)) // same name, different variant
	s.Add(NewGroup("Engineering"))

	assert.Len(t, s.Members(), 2)
	assert.True(t, s.Contains(NewUnresolved("Alice")))
	assert.True(t, s.ContainsName("Engineering"))
	assert.False(t, s.ContainsName("Bob"))

	// First added variant wins.
	assert.Equal(t, NewUser("Alice", KindLogin), s["Alice"])
}

func TestSetNilSafety(t *testing.T) {
	s := NewSet()
	s.Add(nil)
	assert.Empty(t, s.Members())
	assert.False(t, s.Contains(nil))
}
