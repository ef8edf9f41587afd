// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/pellig/statblock/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/pellig/statblock/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/pellig/statblock/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Defaults apply to plain `go build` with no ldflags.
var (
	// Version is the semantic version, e.g. "v1.2.3".
	Version = "dev"

	// Commit is the git commit SHA of the build.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String formats the build information as a multi-line block.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
