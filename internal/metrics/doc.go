// Package metrics records API call counts and latencies, stale-response
// discards and workflow step transitions with the Prometheus client library.
package metrics
