// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides, usually command-line flags
//  2. Environment variables (RESPKV_ prefix)
//  3. YAML configuration file
//  4. Values already present in the target struct
//
// Watcher reports changes to the configuration file so that settings such
// as the log level can be re-applied without a restart.
package confloader
