package policy

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table is the static, ACL-independent permission table, keyed by role or
// group name. It is immutable once built; reloads swap in a whole new table
// through Source.
type Table struct {
	grants map[string][]Permission
}

// NewTable builds a table from a role-name → permissions map, validating
// every permission name.
func NewTable(grants map[string][]Permission) (*Table, error) {
	t := &Table{grants: make(map[string][]Permission, len(grants))}
	for role, perms := range grants {
		for _, p := range perms {
			if !Known(p) {
				return nil, fmt.Errorf("unknown permission %q granted to %q", p, role)
			}
		}
		t.grants[role] = append([]Permission(nil), perms...)
	}
	return t, nil
}

// Allows reports whether the named role holds a grant that implies p.
func (t *Table) Allows(roleName string, p Permission) bool {
	for _, g := range t.grants[roleName] {
		if g.Implies(p) {
			return true
		}
	}
	return false
}

// HasAllPermission reports whether the named role holds the wiki-wide
// administrative grant.
func (t *Table) HasAllPermission(roleName string) bool {
	for _, g := range t.grants[roleName] {
		if g == PermAll {
			return true
		}
	}
	return false
}

// Roles returns the role names with grants, sorted.
func (t *Table) Roles() []string {
	names := make([]string, 0, len(t.grants))
	for name := range t.grants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// policyFile is the on-disk YAML shape.
type policyFile struct {
	Roles map[string][]Permission `yaml:"roles"`
}

// Parse builds a table from YAML policy text.
func Parse(data []byte) (*Table, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("policy defines no roles")
	}
	return NewTable(f.Roles)
}

// Default returns the out-of-the-box policy: everyone may read and edit,
// authenticated users additionally manage their content and profile, and
// the Admin group holds the wiki-wide grant.
func Default() *Table {
	t, err := NewTable(map[string][]Permission{
		"All":           {PermView, PermEdit, PermComment},
		"Anonymous":     {PermLogin},
		"Asserted":      {PermLogin},
		"Authenticated": {PermView, PermEdit, PermComment, PermUpload, PermModify, PermRename, PermCreatePages, PermCreateGroups, PermEditPreferences, PermEditProfile},
		"Admin":         {PermAll},
	})
	if err != nil {
		panic(err) // table is static; an error here is a programming bug
	}
	return t
}
