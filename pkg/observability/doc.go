// Package observability provides Prometheus metrics and log hooks for the
// Enlyst node, client and trigger.
//
// Metrics owns its registry, so several hosts (or tests) can live in one
// process without colliding on the default registerer.
package observability
