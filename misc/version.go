// Package misc keeps build time information.
package misc

import (
	"path/filepath"
	"strings"
)

// Set by linker: -X scout/misc.version=... -X scout/misc.githash=...
var (
	version = "dev"
	githash = "unknown"
	appname = "scout"
)

// GetVersion returns program version as set during build.
func GetVersion() string {
	return version
}

// GetGitHash returns hash of the source tree commit program was built from.
func GetGitHash() string {
	return githash
}

// GetAppName returns short program name without extension.
func GetAppName() string {
	return strings.TrimSuffix(filepath.Base(appname), filepath.Ext(appname))
}
