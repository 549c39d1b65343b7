package app

// Version is the semantic version of netpress, set at build time via -ldflags.
var Version = "0.0.0-dev"

// Build is the git commit hash or build identifier, set at build time via -ldflags.
var Build = "unknown"
