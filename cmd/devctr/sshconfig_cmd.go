package main

import (
	"fmt"
	"log/slog"

	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/sshconf"
)

type SSHConfigCmd struct {
	Output    string `type:"path" placeholder:"<file>" help:"where to write the generated ssh_config (default: ~/.config/devctr/ssh_config)"`
	NoInclude bool   `help:"don't add an Include line to ~/.ssh/config"`
}

func sshEntries(f *config.File) []sshconf.Entry {
	entries := make([]sshconf.Entry, 0, len(f.Containers))
	for _, spec := range f.Containers {
		entries = append(entries, sshconf.Entry{
			Alias:    spec.Name,
			HostName: spec.IP,
			User:     spec.User,
		})
	}
	return entries
}

func (c *SSHConfigCmd) Run(cctx *Context) error {
	f, err := cctx.loadConfig()
	if err != nil {
		return err
	}
	entries := sshEntries(f)

	if cctx.DryRun {
		data, err := sshconf.Render(entries)
		if err != nil {
			return err
		}
		_, err = cctx.Stdout.Write(data)
		return err
	}

	if c.Output == "" {
		if c.Output, err = sshconf.DefaultPath(); err != nil {
			return err
		}
	}
	fsys := sshconf.RealFileSystem{}
	if err := sshconf.Write(fsys, c.Output, entries); err != nil {
		return err
	}
	fmt.Fprintf(cctx.Stdout, "wrote %d hosts to %s\n", len(entries), c.Output)
	if c.NoInclude {
		return nil
	}

	userConfig, err := sshconf.UserConfigPath()
	if err != nil {
		return err
	}
	status, err := sshconf.EnsureInclude(cctx, fsys, userConfig, c.Output)
	if err != nil {
		return err
	}
	slog.InfoContext(cctx, "SSHConfigCmd.Run", "userConfig", userConfig, "includeStatus", status)
	switch status {
	case sshconf.IncludeAdded:
		fmt.Fprintf(cctx.Stdout, "added Include %s to %s\n", c.Output, userConfig)
	case sshconf.IncludeMisplaced:
		fmt.Fprintf(cctx.Stderr, "⚠️  the Include for %s in %s comes after a Host line; move it to the top of the file if ssh doesn't pick up these hosts\n", c.Output, userConfig)
	}
	return nil
}
