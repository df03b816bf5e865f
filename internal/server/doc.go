// Package server runs the optional Prometheus exporter enabled by
// --metrics-addr. It serves /metrics and /healthz behind a small
// security-header middleware.
package server
