// Package buildinfo carries release metadata injected at link time.
package buildinfo

// Set via -ldflags by the release pipeline. Empty for local builds, where
// the version comes from debug.ReadBuildInfo instead.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
