// Package metric provides Prometheus metrics for respkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, command and connection metrics
//   - collector.go: collector reading keyspace statistics at scrape time
//
// Metrics are exposed at /metrics in Prometheus format by the HTTP server.
package metric
