// Package version reports the daybook build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current version of the application.
// This can be set at build time using ldflags:
// -ldflags="-X github.com/wethinkt/go-daybook/internal/version.Version=v1.0.0"
var Version = ""

// Info holds all version-related metadata.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
}

// GetInfo returns a structured Info object.
func GetInfo(name string) Info {
	info := Info{
		Name:      name,
		Version:   Get(),
		GoVersion: runtime.Version(),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Revision = setting.Value
			case "vcs.time":
				info.BuildTime = setting.Value
			case "vcs.modified":
				info.Modified = setting.Value == "true"
			}
		}
	}

	return info
}

// Get returns the version string, including build info if available.
func Get() string {
	if Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return "dev-" + shortRevision(setting.Value)
			}
		}
	}

	return "dev"
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns a fully formatted version and build summary.
func String(name string) string {
	info := GetInfo(name)
	s := fmt.Sprintf("%s version %s", name, info.Version)
	if info.Revision != "" {
		s += fmt.Sprintf(" (%s", shortRevision(info.Revision))
		if info.Modified {
			s += ", modified"
		}
		s += ")"
	}
	return s + " " + info.GoVersion
}
