// Package buildinfo provides build information for linekv.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/linekv/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/linekv/internal/infra/buildinfo.Commit=abc123"
//
// When they are not, Get falls back to the module build info embedded by
// the Go toolchain.
package buildinfo
