// Package buildinfo exposes build information for respkv.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/respkv/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are not, Commit, BuildTime and GoVersion are filled from the
// module build information embedded by the Go toolchain.
package buildinfo
