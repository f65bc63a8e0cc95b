// Package config loads all service configuration from BRAMBLE_* environment
// variables with sane defaults for local development.
package config
