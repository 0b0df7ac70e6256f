// Package main provides the entry point for respkv-cli.
//
// Usage:
//
//	respkv-cli                          # interactive mode
//	respkv-cli ping
//	respkv-cli set --px 500 session abc
//	respkv-cli -s 10.0.0.5:6379 -o json rpush queue job1 job2
//	respkv-cli exec GET session
package main
