// Package page stores wiki pages and attachments and exposes their ACLs to
// the authorization layer. ACL directives are parsed once at save time.
package page
