// Package api is the HTTP surface of the service: group administration,
// pages and attachments with their ACLs, principal resolution, permission
// checks, and the admin endpoints for policy and the audit trail.
package api
