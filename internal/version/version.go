// Package version carries build identification, overridden at link time via
// -ldflags "-X github.com/cortex-data/nirscope/internal/version.Version=...".
package version

import "fmt"

var (
	// Version is the release version.
	Version = "dev"
	// GitSHA is the git commit SHA.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String renders the full build identification line.
func String() string {
	return fmt.Sprintf("nirscope %s (%s, built %s)", Version, GitSHA, BuildTime)
}
