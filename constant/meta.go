// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

import _ "embed"

const (
	// Offplay is the canonical application identifier used for filesystem paths and CLI branding.
	Offplay = "offplay"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// AsciiArtLogo is the banner printed above the root command help.
//
//go:embed ascii.txt
var AsciiArtLogo string
