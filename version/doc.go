// Package version reports the build identity of the vidscribe binary.
//
// Values are injected at link time and fall back to the module build info
// embedded by the Go toolchain:
//
//	go build -ldflags "-X github.com/vidscribe/vidscribe/version.Version=1.2.0" ./cmd/vidscribe
package version
