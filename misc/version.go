// Package misc keeps build time information about the program.
package misc

import "runtime/debug"

// set by the linker: -X texed/misc.version=... -X texed/misc.githash=...
var (
	version = "dev"
	githash = ""
	appname = "texed"
)

// GetAppName returns the name of the program.
func GetAppName() string {
	return appname
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git revision program was built from. When not set by
// the linker build information embedded by go toolchain is used.
func GetGitHash() string {
	if len(githash) > 0 {
		return githash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

