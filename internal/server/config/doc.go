// Package config defines the respkv-server configuration structure,
// its defaults and validation.
//
// Configuration is loaded by internal/infra/confloader from a YAML file,
// RESPKV_* environment variables and command-line flags, in increasing
// order of priority, on top of Default().
package config
