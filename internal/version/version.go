// Package version carries build-time version metadata.
package version

import (
	"fmt"
	"strings"
)

// Version is the service's released version. Overridden at build time via
// ldflags, e.g.:
//
//	go build -ldflags "-X github.com/hrygo/chatrelay/internal/version.Version=v0.3.0"
var Version = "0.0.0-dev"

// GitCommit is the git commit hash at build time.
// Set via ldflags: -X github.com/hrygo/chatrelay/internal/version.GitCommit=$(git rev-parse HEAD)
var GitCommit = "unknown"

// BuildTime is the build timestamp in RFC3339 format.
// Set via ldflags: -X github.com/hrygo/chatrelay/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)
var BuildTime = "unknown"

// GetCurrentVersion returns a "-dev" suffixed version in dev/demo mode, the
// released Version otherwise.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return Version + "-dev"
	}
	return Version
}

// String returns the version with a short commit suffix when available.
func String() string {
	v := Version
	if GitCommit != "" && GitCommit != "unknown" {
		short := GitCommit
		if len(short) > 8 {
			short = short[:8]
		}
		v = fmt.Sprintf("%s-%s", v, short)
	}
	return v
}

// StringFull returns the complete version information including build metadata.
func StringFull() string {
	parts := []string{fmt.Sprintf("Version=%s", Version)}
	if GitCommit != "" && GitCommit != "unknown" {
		short := GitCommit
		if len(short) > 8 {
			short = short[:8]
		}
		parts = append(parts, fmt.Sprintf("Commit=%s", short))
	}
	if BuildTime != "" && BuildTime != "unknown" {
		parts = append(parts, fmt.Sprintf("BuildTime=%s", BuildTime))
	}
	return strings.Join(parts, " ")
}
