// Package main provides the entry point for respkv-server.
//
// The server accepts RESP2 clients on server.redis.addr and, when enabled,
// serves /metrics and /healthz on server.metrics.addr.
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /etc/respkv/config.yaml
//	respkv-server --addr 0.0.0.0:6379 --log-level debug
//
// Configuration is layered: defaults, then the YAML file, then RESPKV_*
// environment variables, then flags. Changes to log.level in the config
// file take effect without a restart.
package main
