// Package version exposes build metadata for the kaproxy binary and the
// client's User-Agent.
//
// Values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/kaproxy-go/version.Version=1.4.0"
//
// and fall back to the VCS settings recorded by the Go toolchain.
package version
