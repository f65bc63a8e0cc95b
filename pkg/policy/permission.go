package policy

// Permission is a named action on the wiki or on a page.
type Permission string

// Page permissions.
const (
	PermView    Permission = "view"
	PermComment Permission = "comment"
	PermUpload  Permission = "upload"
	PermEdit    Permission = "edit"
	PermRename  Permission = "rename"
	PermModify  Permission = "modify"
	PermDelete  Permission = "delete"
)

// Wiki-level permissions.
const (
	PermLogin           Permission = "login"
	PermCreatePages     Permission = "createPages"
	PermCreateGroups    Permission = "createGroups"
	PermEditPreferences Permission = "editPreferences"
	PermEditProfile     Permission = "editProfile"

	// PermAll is the wiki-wide grant held by administrators. Note the
	// deliberate asymmetry: under the static check PermAll implies every
	// permission except page delete, while the resource check treats it as
	// an unconditional grant. See Evaluator in pkg/authz.
	PermAll Permission = "allPermission"
)

// implied maps each permission to the set of permissions it carries with it.
// A broader page action always carries the narrower ones: editing a page is
// meaningless without viewing it.
var implied = map[Permission][]Permission{
	PermView:    {PermView},
	PermComment: {PermComment, PermView},
	PermUpload:  {PermUpload, PermView},
	PermEdit:    {PermEdit, PermComment, PermView},
	PermRename:  {PermRename, PermEdit, PermComment, PermView},
	PermModify:  {PermModify, PermEdit, PermUpload, PermComment, PermView},
	PermDelete:  {PermDelete, PermModify, PermRename, PermEdit, PermUpload, PermComment, PermView},
}

// Implies reports whether holding p grants q. Every permission implies
// itself. PermAll implies everything except PermDelete: a delete must be
// granted explicitly at the static-policy tier.
func (p Permission) Implies(q Permission) bool {
	if p == q {
		return true
	}
	if p == PermAll {
		return q != PermDelete
	}
	for _, g := range implied[p] {
		if g == q {
			return true
		}
	}
	return false
}

// Known reports whether p is one of the defined permissions. The policy
// loader uses it to reject typos in policy files; ACL entries are not
// filtered through it because unknown actions there simply never match.
func Known(p Permission) bool {
	switch p {
	case PermView, PermComment, PermUpload, PermEdit, PermRename, PermModify,
		PermDelete, PermLogin, PermCreatePages, PermCreateGroups,
		PermEditPreferences, PermEditProfile, PermAll:
		return true
	}
	return false
}
