// Package version reports build metadata for devctr binaries.
package version

import (
	"runtime/debug"
)

var (
	// These will be set via -ldflags during build
	GitRepo   string
	GitBranch string
	GitCommit string
	BuildTime string
)

// Info returns a struct containing all version information
type Info struct {
	GitRepo   string           `json:"gitRepo,omitempty"`
	GitBranch string           `json:"gitBranch,omitempty"`
	GitCommit string           `json:"gitCommit,omitempty"`
	BuildTime string           `json:"buildTime,omitempty"`
	BuildInfo *debug.BuildInfo `json:"buildInfo,omitempty"`
}

// Get returns the version information
func Get() Info {
	buildInfo, ok := debug.ReadBuildInfo()
	ret := Info{
		GitRepo:   GitRepo,
		GitBranch: GitBranch,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	if ok {
		ret.BuildInfo = buildInfo
	}
	return ret
}

// Setting returns the named build setting (e.g. "vcs.revision"), or "".
func (v Info) Setting(key string) string {
	if v.BuildInfo == nil {
		return ""
	}
	for _, s := range v.BuildInfo.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Short is a compact version string: the ldflags commit if set, else the VCS
// revision recorded by the go tool, else the module version, else "devel".
func (v Info) Short() string {
	commit := v.GitCommit
	if commit == "" {
		commit = v.Setting("vcs.revision")
	}
	if commit != "" {
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if v.Setting("vcs.modified") == "true" {
			commit += "-dirty"
		}
		return commit
	}
	if v.BuildInfo != nil && v.BuildInfo.Main.Version != "" && v.BuildInfo.Main.Version != "(devel)" {
		return v.BuildInfo.Main.Version
	}
	return "devel"
}
