// Package version holds the build version, overridden at link time:
//
//	go build -ldflags "-X delgen/internal/version.Version=v1.2.3"
package version

import "runtime/debug"

// Version is the release tag of the binary.
var Version = "dev"

// String returns Version, falling back to the module version recorded in
// the build info for `go install`ed binaries.
func String() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
