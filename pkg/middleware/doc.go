// Package middleware provides the HTTP middleware chain: request IDs,
// structured request logging, metrics, session attachment, and permission
// guards.
package middleware
