// Package observability bundles the operational surface of the service:
// structured JSON logging on slog, Prometheus metrics, OpenTelemetry
// tracing, health probes, and graceful shutdown.
package observability
