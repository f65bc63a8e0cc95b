package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/event"
)

func TestImplication(t *testing.T) {
	tests := []struct {
		holder  Permission
		asked   Permission
		implied bool
	}{
		{PermEdit, PermView, true},
		{PermEdit, PermComment, true},
		{PermEdit, PermEdit, true},
		{PermEdit, PermDelete, false},
		{PermView, PermEdit, false},
		{PermModify, PermUpload, true},
		{PermModify, PermRename, false},
		{PermRename, PermEdit, true},
		{PermDelete, PermModify, true},
		{PermDelete, PermView, true},
		{PermAll, PermView, true},
		{PermAll, PermRename, true},
		{PermAll, PermCreateGroups, true},
		// The documented asymmetry: the wiki-wide grant does not imply
		// delete at the static tier.
		{PermAll, PermDelete, false},
		{PermAll, PermAll, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.holder)+"->"+string(tt.asked), func(t *testing.T) {
			assert.Equal(t, tt.implied, tt.holder.Implies(tt.asked))
		})
	}
}

func TestTableAllows(t *testing.T) {
	table, err := NewTable(map[string][]Permission{
		"All":   {PermView, PermEdit},
		"Admin": {PermAll},
	})
	require.NoError(t, err)

	assert.True(t, table.Allows("All", PermView))
	assert.True(t, table.Allows("All", PermComment)) // via edit
	assert.False(t, table.Allows("All", PermDelete))
	assert.False(t, table.Allows("Nobody", PermView))

	assert.True(t, table.HasAllPermission("Admin"))
	assert.False(t, table.HasAllPermission("All"))
	assert.True(t, table.Allows("Admin", PermRename))
	assert.False(t, table.Allows("Admin", PermDelete))
}

func TestNewTableRejectsUnknownPermission(t *testing.T) {
	_, err := NewTable(map[string][]Permission{"All": {"fly"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fly")
}

func TestParseYAML(t *testing.T) {
	table, err := Parse([]byte(`
roles:
  All: [view, edit]
  Admin: [allPermission]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "All"}, table.Roles())
	assert.True(t, table.Allows("All", PermEdit))
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	_, err := Parse([]byte(`roles: {}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{{nope`))
	assert.Error(t, err)
}

func TestDefaultPolicy(t *testing.T) {
	table := Default()

	// Anonymous sessions may view and edit through All, but never delete.
	assert.True(t, table.Allows("All", PermView))
	assert.True(t, table.Allows("All", PermEdit))
	assert.False(t, table.Allows("All", PermDelete))

	// Authenticated users manage content but do not delete.
	assert.True(t, table.Allows("Authenticated", PermModify))
	assert.True(t, table.Allows("Authenticated", PermUpload))
	assert.True(t, table.Allows("Authenticated", PermRename))
	assert.False(t, table.Allows("Authenticated", PermDelete))

	// Admin holds the wiki-wide grant, which statically excludes delete.
	assert.True(t, table.HasAllPermission("Admin"))
	assert.False(t, table.Allows("Admin", PermDelete))
}

func TestSourceReplacePublishesReloadEvent(t *testing.T) {
	d := event.NewDispatcher()
	var got []event.Type
	d.Subscribe(func(e event.Event) { got = append(got, e.Type) })

	s := NewSource(Default(), d)
	table, err := NewTable(map[string][]Permission{"All": {PermView}})
	require.NoError(t, err)
	s.Replace(table)

	assert.Equal(t, []event.Type{event.TypePolicyReload}, got)
	assert.False(t, s.Current().Allows("All", PermEdit))
}

func TestLoadFileAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  All: [view]\n"), 0o644))

	s, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.True(t, s.Current().Allows("All", PermView))
	assert.False(t, s.Current().Allows("All", PermEdit))

	require.NoError(t, os.WriteFile(path, []byte("roles:\n  All: [view, edit]\n"), 0o644))
	require.NoError(t, s.Reload())
	assert.True(t, s.Current().Allows("All", PermEdit))

	// A broken rewrite keeps the previous table active.
	require.NoError(t, os.WriteFile(path, []byte("{{nope"), 0o644))
	require.Error(t, s.Reload())
	assert.True(t, s.Current().Allows("All", PermEdit))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  All: [view]\n"), 0o644))

	s, err := LoadFile(path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Watch(nil))
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  All: [view, edit]\n"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Current().Allows("All", PermEdit) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("policy was not reloaded after file write")
}
