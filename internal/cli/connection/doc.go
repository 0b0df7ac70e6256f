// Package connection provides the RESP client used by respkv-cli.
package connection
