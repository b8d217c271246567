package version

import (
	"fmt"
	"runtime/debug"
)

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/openstax/bookops/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/openstax/bookops/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/openstax/bookops/internal/version.Date={{.Date}}
)

// Info returns the version banner of the named program. Builds without
// ldflags report the module version and VCS revision when go embedded
// them.
func Info(name string) string {
	version, commit, date := Version, Commit, Date
	if bi, ok := debug.ReadBuildInfo(); ok && version == "dev" {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			version = v
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "unknown":
				commit = s.Value
			case s.Key == "vcs.time" && date == "unknown":
				date = s.Value
			}
		}
	}
	return fmt.Sprintf("%s version %s\n  commit: %s\n  built:  %s\n", name, version, commit, date)
}
