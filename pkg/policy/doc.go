// Package policy holds the static permission model: the permission names,
// the implication table between them, and the role-keyed grant table loaded
// from configuration.
//
// The static table answers "may this role do X anywhere", independent of any
// page ACL. Broader grants imply narrower ones (edit implies comment and
// view; modify implies edit and upload). The administrative allPermission
// grant implies everything except page delete; that asymmetry against the
// resource-level check is a preserved behavioral contract, exercised by the
// pkg/authz tests.
//
// Policy files are YAML:
//
//	roles:
//	  All: [view, edit, comment]
//	  Authenticated: [view, edit, comment, upload, modify, rename]
//	  Admin: [allPermission]
//
// A Source wraps the active table behind an atomic pointer and can watch the
// backing file, swapping in the new table and publishing a policy.reload
// event on change.
package policy
