// Package logger builds the process loggers for respkv on top of log/slog.
//
// Every logger returned by New shares one level, which SetLevel changes at
// runtime. Oversized and binary attribute values are truncated before they
// reach the handler.
package logger
