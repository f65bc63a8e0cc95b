package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bramblewiki/bramble/pkg/acl"
	"github.com/bramblewiki/bramble/pkg/principal"
)

func nameResolver(name string) principal.Principal {
	if role, ok := principal.BuiltinRoleByName(name); ok {
		return role
	}
	return principal.NewUnresolved(name)
}

func TestSaveParsesACLDirectives(t *testing.T) {
	r := NewRepository(nameResolver)

	p, err := r.Save("Main", "Welcome!\n[{ALLOW edit Authenticated}]\n", "alice")
	require.NoError(t, err)
	require.False(t, p.ACL().IsEmpty())

	entries := p.ACL().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, principal.Authenticated, entries[0].Principal)
	assert.True(t, entries[0].Allows("edit"))
}

func TestSaveRejectsDenyDirectives(t *testing.T) {
	r := NewRepository(nameResolver)

	_, err := r.Save("Main", "safe text", "alice")
	require.NoError(t, err)

	_, err = r.Save("Main", "[{DENY view mallory}]", "mallory")
	require.Error(t, err)

	// The earlier revision is untouched.
	p, err := r.Get("Main")
	require.NoError(t, err)
	assert.Equal(t, "safe text", p.Text)
	assert.Equal(t, "alice", p.Author)
}

func TestGetUnknownPage(t *testing.T) {
	r := NewRepository(nameResolver)
	_, err := r.Get("Nope")
	assert.ErrorIs(t, err, ErrNoSuchPage)
}

func TestAttachmentsInheritThroughProvider(t *testing.T) {
	r := NewRepository(nameResolver)
	_, err := r.Save("Secret", "[{ALLOW view alice}]", "alice")
	require.NoError(t, err)
	a, err := r.Attach("Secret", "plan.pdf", "alice", 1024)
	require.NoError(t, err)
	assert.Equal(t, "Secret/plan.pdf", a.Key())

	// The attachment has no ACL of its own; the store resolves the page's.
	store := acl.NewStore(r)
	assert.Nil(t, r.AclFor("Secret/plan.pdf"))
	resolved := store.Resolve("Secret/plan.pdf")
	require.NotNil(t, resolved)
	entry := resolved.FirstMatch(func(p principal.Principal) bool {
		return p.Name() == "alice"
	})
	require.NotNil(t, entry)
	assert.True(t, entry.Allows("view"))
}

func TestAttachRequiresPage(t *testing.T) {
	r := NewRepository(nameResolver)
	_, err := r.Attach("Ghost", "file.txt", "alice", 1)
	assert.ErrorIs(t, err, ErrNoSuchPage)
}

func TestDeleteRemovesAttachments(t *testing.T) {
	r := NewRepository(nameResolver)
	_, err := r.Save("Main", "text", "alice")
	require.NoError(t, err)
	_, err = r.Attach("Main", "a.txt", "alice", 1)
	require.NoError(t, err)
	_, err = r.Attach("Main", "b.txt", "alice", 2)
	require.NoError(t, err)
	require.Len(t, r.Attachments("Main"), 2)

	require.NoError(t, r.Delete("Main"))
	assert.Empty(t, r.Attachments("Main"))
	_, ok := r.ParentOf("Main/a.txt")
	assert.False(t, ok)
}

func TestAllSorted(t *testing.T) {
	r := NewRepository(nameResolver)
	for _, n := range []string{"Zebra", "Alpha", "Middle"} {
		_, err := r.Save(n, "x", "alice")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Alpha", "Middle", "Zebra"}, r.All())
}
