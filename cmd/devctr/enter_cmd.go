package main

import (
	"fmt"
	"log/slog"

	"github.com/banksean/devctr"
	"github.com/banksean/devctr/options"
)

type EnterCmd struct {
	User  string `short:"u" placeholder:"<user>" help:"user to log in as (default: the container's configured user)"`
	Shell string `short:"s" placeholder:"<shell>" help:"shell to run (default: the configured login shell)"`
	Name  string `arg:"" predictor:"container" help:"name of the container"`
}

func (c *EnterCmd) Run(cctx *Context) error {
	f, err := cctx.loadConfig()
	if err != nil {
		return err
	}
	spec, err := lookupSpec(f, c.Name)
	if err != nil {
		return err
	}
	if c.User == "" {
		c.User = spec.User
	}
	if c.Shell == "" {
		c.Shell = f.Settings.LoginShell
	}

	svc := cctx.containerSvc(f.Settings)
	opts := options.ExecContainer{
		ProcessOptions: options.ProcessOptions{
			Interactive: true,
			TTY:         true,
			User:        c.User,
			WorkDir:     spec.HomeDir(f.Settings),
		},
	}
	if c.User != spec.User {
		opts.WorkDir = ""
	}
	if cctx.DryRun {
		fmt.Fprintln(cctx.Stdout, "$ "+devctr.ShellJoin(svc.CommandLine(svc.ExecArgs(opts, spec.Name, c.Shell, "-l")...)))
		return nil
	}

	ok, err := svc.Exists(cctx, spec.Name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s (run `devctr apply` first)", devctr.ErrContainerNotFound, spec.Name)
	}

	slog.InfoContext(cctx, "EnterCmd.Run", "name", spec.Name, "user", c.User)
	wait, err := svc.ExecStream(cctx, opts, spec.Name, c.Shell, nil, cctx.Stdin, cctx.Stdout, cctx.Stderr, "-l")
	if err != nil {
		return err
	}
	return wait()
}
