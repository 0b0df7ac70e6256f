// Package httpserver serves the operational HTTP endpoints: Prometheus
// metrics on /metrics and a liveness check on /healthz.
package httpserver
