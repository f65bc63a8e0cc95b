// Package audit records security-relevant actions: session transitions,
// group administration, page and attachment changes, and access denials.
package audit
