// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/dexux/marketsync/internal/version.Version=0.3.0 \
//	                   -X github.com/dexux/marketsync/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/dexux/marketsync/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/marketsync
package version

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "0.3.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return "marketsync " + Version + " (" + Commit + ") built " + BuildTime
}

// LogAttrs returns the build variables as slog key/value pairs.
func LogAttrs() []any {
	return []any{"version", Version, "commit", Commit, "build_time", BuildTime}
}
