// Package registry turns names found in ACL directives and API requests
// into typed principals, with built-in roles taking absolute precedence
// over groups and users.
package registry
