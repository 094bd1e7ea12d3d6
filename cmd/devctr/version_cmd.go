package main

import (
	"fmt"

	"github.com/banksean/devctr/version"
)

type VersionCmd struct{}

func (c *VersionCmd) Run(cctx *Context) error {
	versionInfo := version.Get()
	fmt.Fprintf(cctx.Stdout, "Version: %s\n", versionInfo.Short())
	fmt.Fprintf(cctx.Stdout, "Git Repository: %s\n", versionInfo.GitRepo)
	fmt.Fprintf(cctx.Stdout, "Git Branch: %s\n", versionInfo.GitBranch)
	fmt.Fprintf(cctx.Stdout, "Git Commit: %s\n", versionInfo.GitCommit)
	fmt.Fprintf(cctx.Stdout, "Build Time: %s\n", versionInfo.BuildTime)
	if versionInfo.BuildInfo == nil {
		fmt.Fprintln(cctx.Stdout, "Build info not available")
		return nil
	}
	fmt.Fprintf(cctx.Stdout, "Go Version: %s\n", versionInfo.BuildInfo.GoVersion)
	if t := versionInfo.Setting("vcs.time"); t != "" && versionInfo.BuildTime == "" {
		fmt.Fprintf(cctx.Stdout, "Commit Time: %s\n", t)
	}
	if m := versionInfo.Setting("vcs.modified"); m != "" {
		fmt.Fprintf(cctx.Stdout, "Modified: %s\n", m)
	}
	return nil
}
