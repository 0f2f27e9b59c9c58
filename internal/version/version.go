package version

import "fmt"

// Name is the binary name printed by the version command.
const Name = "dataset-ingest"

var (
	// Version is the semantic version (injected at build time).
	Version = "dev"
	// Commit is the git commit SHA (injected at build time).
	Commit = "unknown"
	// BuildDate is the build timestamp (injected at build time).
	BuildDate = "unknown"
)

// Info returns formatted version information.
func Info() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildDate)
}

// String returns the full banner, e.g. "dataset-ingest dev (unknown, built unknown)".
func String() string {
	return Name + " " + Info()
}
