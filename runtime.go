// Package devctr reconciles a declarative list of development containers against
// what the container engine actually has.
package devctr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/options"
	"github.com/banksean/devctr/podman"
	"mvdan.cc/sh/v3/syntax"
)

// Runtime is the narrow set of engine operations the Reconciler needs.
type Runtime interface {
	// Exists reports whether a container named name exists, running or not.
	Exists(ctx context.Context, name string) (bool, error)
	// Create starts a new container for spec, labelled with fingerprint.
	Create(ctx context.Context, spec config.ContainerSpec, fingerprint string) error
	// CurrentFingerprint returns the fingerprint label of a live container, or "" if
	// it can't be read.
	CurrentFingerprint(ctx context.Context, name string) string
	// Exec runs script with bash inside the named container as user.
	Exec(ctx context.Context, name, user, script string) error
}

// RunOptions are the `run` flags used to create the container for spec.
func RunOptions(s config.Settings, spec config.ContainerSpec, fingerprint string) options.RunContainer {
	return options.RunContainer{
		ManagementOptions: options.ManagementOptions{
			Detach:     true,
			Name:       spec.Name,
			Network:    s.Network,
			IP:         spec.IP,
			Hostname:   spec.Hostname,
			Privileged: true,
			Volume: []string{
				spec.VolumeName(s) + ":" + s.HomeMount,
				s.CgroupMount,
			},
			Label: map[string]string{s.LabelKey: fingerprint},
		},
	}
}

func execOptions(user string) options.ExecContainer {
	return options.ExecContainer{ProcessOptions: options.ProcessOptions{User: user}}
}

type podmanRuntime struct {
	settings config.Settings
	svc      *podman.ContainerSvc
}

// NewPodmanRuntime returns a Runtime that drives the engine through svc.
func NewPodmanRuntime(settings config.Settings, svc *podman.ContainerSvc) Runtime {
	return &podmanRuntime{settings: settings, svc: svc}
}

func (p *podmanRuntime) Exists(ctx context.Context, name string) (bool, error) {
	return p.svc.Exists(ctx, name)
}

func (p *podmanRuntime) Create(ctx context.Context, spec config.ContainerSpec, fingerprint string) error {
	id, err := p.svc.Run(ctx, RunOptions(p.settings, spec, fingerprint), spec.Image)
	if err != nil {
		return fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}
	slog.InfoContext(ctx, "podmanRuntime.Create", "name", spec.Name, "id", id)
	return nil
}

func (p *podmanRuntime) CurrentFingerprint(ctx context.Context, name string) string {
	return p.svc.InspectLabel(ctx, name, p.settings.LabelKey)
}

func (p *podmanRuntime) Exec(ctx context.Context, name, user, script string) error {
	out, err := p.svc.Exec(ctx, execOptions(user), name, "bash", "-c", script)
	if err != nil {
		return fmt.Errorf("failed to provision %s: %w", name, err)
	}
	if out != "" {
		slog.InfoContext(ctx, "podmanRuntime.Exec", "name", name, "output", out)
	}
	return nil
}

// dryRunRuntime prints what it would run. It never reads engine state, so the only
// containers it knows about are the ones it "created" itself.
type dryRunRuntime struct {
	settings  config.Settings
	svc       *podman.ContainerSvc
	messenger UserMessenger
	created   map[string]string
}

// NewDryRunRuntime returns a Runtime that reports each mutating command through
// messenger instead of running it. svc is only used to build command lines.
func NewDryRunRuntime(settings config.Settings, svc *podman.ContainerSvc, messenger UserMessenger) Runtime {
	return &dryRunRuntime{
		settings:  settings,
		svc:       svc,
		messenger: messenger,
		created:   map[string]string{},
	}
}

func (d *dryRunRuntime) Exists(ctx context.Context, name string) (bool, error) {
	_, ok := d.created[name]
	return ok, nil
}

func (d *dryRunRuntime) Create(ctx context.Context, spec config.ContainerSpec, fingerprint string) error {
	d.print(ctx, d.svc.RunArgs(RunOptions(d.settings, spec, fingerprint), spec.Image))
	d.created[spec.Name] = fingerprint
	return nil
}

func (d *dryRunRuntime) CurrentFingerprint(ctx context.Context, name string) string {
	return d.created[name]
}

func (d *dryRunRuntime) Exec(ctx context.Context, name, user, script string) error {
	d.print(ctx, d.svc.ExecArgs(execOptions(user), name, "bash", "-c", script))
	return nil
}

func (d *dryRunRuntime) print(ctx context.Context, args []string) {
	d.messenger.Message(ctx, "$ "+ShellJoin(d.svc.CommandLine(args...)))
}

// ShellJoin renders argv as a single bash command line, quoting where needed.
func ShellJoin(argv []string) string {
	words := make([]string, 0, len(argv))
	for _, a := range argv {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", a)
		}
		words = append(words, q)
	}
	return strings.Join(words, " ")
}
