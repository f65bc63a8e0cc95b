package user

import (
	"sort"
	"strings"
	"sync"

	"github.com/bramblewiki/bramble/pkg/principal"
)

// Profile holds the three equivalent name forms of a known user. The engine
// never sees credentials; authentication happens elsewhere and only the
// resulting identity reaches this directory.
type Profile struct {
	LoginName string `json:"login_name"`
	FullName  string `json:"full_name"`
	WikiName  string `json:"wiki_name"`
}

// Principals returns the identity principals for all of the profile's name
// forms. These are the base principals an authenticated session carries.
func (p *Profile) Principals() []principal.Principal {
	var out []principal.Principal
	if p.LoginName != "" {
		out = append(out, principal.NewUser(p.LoginName, principal.KindLogin))
	}
	if p.FullName != "" {
		out = append(out, principal.NewUser(p.FullName, principal.KindFull))
	}
	if p.WikiName != "" {
		out = append(out, principal.NewUser(p.WikiName, principal.KindWiki))
	}
	return out
}

// WikiNameOf derives the CamelCase wiki name from a full name by dropping
// spaces ("Janne Jalkanen" -> "JanneJalkanen").
func WikiNameOf(fullName string) string {
	return strings.ReplaceAll(fullName, " ", "")
}

// Directory is the read-only user lookup surface the resolution engine
// consumes. Lookup matches a bare name against login, full, and wiki names,
// in that order, and reports which form matched.
type Directory interface {
	Lookup(name string) (*Profile, principal.UserKind, bool)
}

// MemoryDirectory is an in-memory Directory, used by tests and by
// deployments where the external user store pushes its contents at startup.
type MemoryDirectory struct {
	mu       sync.RWMutex
	profiles []*Profile
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{}
}

// Add registers a profile. A missing wiki name is derived from the full name.
func (d *MemoryDirectory) Add(p Profile) {
	if p.WikiName == "" {
		p.WikiName = WikiNameOf(p.FullName)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles = append(d.profiles, &p)
}

// Lookup implements Directory.
func (d *MemoryDirectory) Lookup(name string) (*Profile, principal.UserKind, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.profiles {
		switch name {
		case p.LoginName:
			return p, principal.KindLogin, true
		case p.FullName:
			return p, principal.KindFull, true
		case p.WikiName:
			return p, principal.KindWiki, true
		}
	}
	return nil, 0, false
}

// All returns the registered profiles sorted by login name.
func (d *MemoryDirectory) All() []*Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Profile, len(d.profiles))
	copy(out, d.profiles)
	sort.Slice(out, func(i, j int) bool { return out[i].LoginName < out[j].LoginName })
	return out
}
