// Package repl provides interactive mode for respkv-cli.
//
// Each input line is split into arguments (double quotes group words and
// accept Go escapes), sent as one command, and its reply printed.
package repl
