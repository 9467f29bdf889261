// Package version reports the filesig build.
//
// Version, commit and build time can be set at link time:
//
//	go build -ldflags "-X github.com/kbukum/filesig/version.Version=1.0.0"
//
// Otherwise they are taken from the build information the Go toolchain
// embeds in the binary.
package version
