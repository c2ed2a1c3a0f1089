// Package buildinfo exposes version information stamped at link time:
//
//	go build -ldflags "-X github.com/gundaabinav333/authshell/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/gundaabinav333/authshell/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Unstamped builds fall back to the module build info embedded by the Go
// toolchain.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Stamped via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build description printed by the version commands.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "unknown" && len(s.Value) >= 7 {
					info.Commit = s.Value[:7]
				}
			case "vcs.time":
				if info.BuildTime == "unknown" {
					info.BuildTime = s.Value
				}
			}
		}
	}
	return info
}

// String returns "version (commit) built at time".
func String() string {
	i := Get()
	return i.Version + " (" + i.Commit + ") built at " + i.BuildTime
}

// UserAgent returns "product/version".
func UserAgent(product string) string {
	return product + "/" + Get().Version
}
