package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/principal"
)

func TestSQLiteDatabaseRoundTrip(t *testing.T) {
	db, err := OpenSQLiteDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	g := New("TV")
	g.Add(principal.NewUser("Biff", principal.KindLogin))
	require.NoError(t, db.SaveGroup(g))

	groups, err := db.LoadAll()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "TV", groups[0].Name())
	require.Len(t, groups[0].Members(), 1)
	assert.Equal(t, "Biff", groups[0].Members()[0].Name())

	// Replacement updates in place.
	g.Add(principal.NewUser("Marty", principal.KindLogin))
	require.NoError(t, db.SaveGroup(g))
	groups, err = db.LoadAll()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members(), 2)

	require.NoError(t, db.DeleteGroup("TV"))
	groups, err = db.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestStoreWritesThroughToDatabase(t *testing.T) {
	db, err := OpenSQLiteDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(event.NewDispatcher(), db)
	require.NoError(t, err)

	g := New("Engineering")
	g.Add(principal.NewUser("alice", principal.KindLogin))
	require.NoError(t, s.CreateOrReplace(nil, g))
	require.NoError(t, s.AddMember("Engineering", principal.NewUser("bob", principal.KindLogin)))

	// A second store over the same database sees the committed state.
	s2, err := NewStore(event.NewDispatcher(), db)
	require.NoError(t, err)
	got, err := s2.Get("Engineering")
	require.NoError(t, err)
	assert.Len(t, got.Members(), 2)

	// Reloaded members match by name regardless of variant.
	assert.True(t, got.IsMember(principal.NewUser("alice", principal.KindFull)))
}
