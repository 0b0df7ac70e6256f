// Package command provides CLI command definitions for respkv-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, client lifecycle
//   - keys.go: ping, echo, get, set, rpush, exec
//   - repl.go: interactive mode
//
// Every command sends exactly one RESP request and prints the reply with
// the formatter selected by --output. Error replies are printed, not
// returned; only transport failures make a command fail.
package command
