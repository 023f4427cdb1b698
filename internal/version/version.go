// Package version holds build metadata injected via -ldflags.
package version

//nolint:revive // Overridden at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
