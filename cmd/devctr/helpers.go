package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/banksean/devctr"
	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/journal"
	"github.com/banksean/devctr/podman"
	"golang.org/x/term"
)

func (c *Context) loadConfig() (*config.File, error) {
	f, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(c, "loaded config", "path", c.ConfigPath, "containers", len(f.Containers))
	return f, nil
}

func (c *Context) containerSvc(s config.Settings) *podman.ContainerSvc {
	return podman.NewContainerSvc(s.Engine)
}

// messenger styles output only when stdout is a terminal. Warnings go to stderr.
func (c *Context) messenger() devctr.UserMessenger {
	if f, ok := c.Stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return devctr.NewTerminalMessenger(c.Stdout, c.Stderr)
	}
	return devctr.NewPlainMessenger(c.Stdout, c.Stderr)
}

func (c *Context) openJournal() (*journal.Journal, error) {
	return journal.Open(c, c.JournalPath)
}

// selectSpecs returns the containers listed in names, in config order, or all of them when
// names is empty.
func selectSpecs(f *config.File, names []string) ([]config.ContainerSpec, error) {
	if len(names) == 0 {
		return f.Containers, nil
	}
	var unknown []string
	for _, n := range names {
		if _, ok := f.Lookup(n); !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", devctr.ErrContainerNotFound, strings.Join(unknown, ", "))
	}
	var ret []config.ContainerSpec
	for _, spec := range f.Containers {
		if slices.Contains(names, spec.Name) {
			ret = append(ret, spec)
		}
	}
	return ret, nil
}

func lookupSpec(f *config.File, name string) (config.ContainerSpec, error) {
	spec, ok := f.Lookup(name)
	if !ok {
		return config.ContainerSpec{}, fmt.Errorf("%w: %s is not in the containers file", devctr.ErrContainerNotFound, name)
	}
	return spec, nil
}
