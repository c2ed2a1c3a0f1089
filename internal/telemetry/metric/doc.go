// Package metric holds the Prometheus registry for authshell.
//
// A Registry owns its own prometheus.Registry (plus the Go and process
// collectors) so tests can build isolated instances. Global returns the
// process-wide one served at /metrics.
package metric
