// Package output renders server replies for respkv-cli.
//
// The text format mirrors redis-cli; json and yaml are for scripting.
package output
