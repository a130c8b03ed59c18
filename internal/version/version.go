// Package version holds build metadata set from the main package.
package version

// Version and BuildTime are populated by the cmd package at startup
// (overridden via -ldflags in release builds).
var (
	Version   = "dev"
	BuildTime = "unknown"
)
