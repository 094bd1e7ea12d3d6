// Package podman wraps the podman command line. Every operation is a blocking
// child process; nothing here talks to the podman API socket directly.
package podman

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/banksean/devctr/options"
	"github.com/banksean/devctr/types"
	"github.com/creack/pty"
	"golang.org/x/term"
)

// ExecCommandFunc creates the *exec.Cmd for an engine invocation. Tests swap it out.
// The command must be bound to ctx, as exec.CommandContext does.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// killWaitDelay bounds how long a cancelled command may keep its output pipes open.
const killWaitDelay = 2 * time.Second

// DefaultEngine is the argv prefix used when none is configured.
var DefaultEngine = []string{"podman"}

// ContainerSvc runs container commands through an engine argv prefix such as
// ["sudo", "podman"].
type ContainerSvc struct {
	engine      []string
	execCommand ExecCommandFunc
}

// Option configures a ContainerSvc.
type Option func(*ContainerSvc)

// WithExecCommand replaces the function used to build child processes.
func WithExecCommand(f ExecCommandFunc) Option {
	return func(c *ContainerSvc) {
		c.execCommand = f
	}
}

// NewContainerSvc returns a ContainerSvc that prefixes every command with engine.
func NewContainerSvc(engine []string, opts ...Option) *ContainerSvc {
	if len(engine) == 0 {
		engine = DefaultEngine
	}
	c := &ContainerSvc{
		engine:      slices.Clone(engine),
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CommandLine returns the full argv, engine prefix included, for the given engine arguments.
func (c *ContainerSvc) CommandLine(args ...string) []string {
	return append(slices.Clone(c.engine), args...)
}

// ownProcessGroup starts cmd in its own process group and kills the whole group when
// the command's context is done. Killing only the direct child would leave the engine
// behind sudo running with our output pipe open.
func ownProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = killWaitDelay
}

func (c *ContainerSvc) command(ctx context.Context, args ...string) *exec.Cmd {
	argv := c.CommandLine(args...)
	return c.execCommand(ctx, argv[0], argv[1:]...)
}

// Exists reports whether a container with the given name exists. A non-zero exit from
// the engine means "no such container"; only a failure to start the engine is an error.
func (c *ContainerSvc) Exists(ctx context.Context, name string) (bool, error) {
	return c.exists(ctx, "container", "exists", name)
}

// RunArgs returns the engine arguments for `run`.
func (c *ContainerSvc) RunArgs(opts options.RunContainer, image string, cmdArgs ...string) []string {
	args := append([]string{"run"}, options.ToArgs(opts)...)
	args = append(args, image)
	return append(args, cmdArgs...)
}

// Run creates and starts a new container. With opts.Detach set it returns the ID of the
// new container instance.
func (c *ContainerSvc) Run(ctx context.Context, opts options.RunContainer, image string, cmdArgs ...string) (string, error) {
	cmd := c.command(ctx, c.RunArgs(opts, image, cmdArgs...)...)
	ownProcessGroup(cmd)
	slog.InfoContext(ctx, "ContainerSvc.Run", "cmd", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", newCommandError(ctx, cmd.Args, output, err)
	}
	return lastLine(output), nil
}

// LabelFormat is the inspect template that reads a single label from a container's config.
func LabelFormat(key string) string {
	return `{{ index .Config.Labels "` + key + `" }}`
}

// InspectLabel returns the value of the label key on the named container. It returns
// the empty string when the container can't be inspected or doesn't carry the label.
func (c *ContainerSvc) InspectLabel(ctx context.Context, name, key string) string {
	opts := options.InspectContainer{
		Type:   "container",
		Format: LabelFormat(key),
	}
	args := append([]string{"inspect"}, options.ToArgs(opts)...)
	cmd := c.command(ctx, append(args, name)...)
	ownProcessGroup(cmd)
	slog.DebugContext(ctx, "ContainerSvc.InspectLabel", "cmd", strings.Join(cmd.Args, " "))
	output, err := cmd.Output()
	if err != nil {
		slog.InfoContext(ctx, "ContainerSvc.InspectLabel", "name", name, "key", key, "error", err)
		return ""
	}
	value := strings.TrimSpace(string(output))
	if value == "<no value>" {
		return ""
	}
	return value
}

// ExecArgs returns the engine arguments for `exec`.
func (c *ContainerSvc) ExecArgs(opts options.ExecContainer, name, command string, cmdArgs ...string) []string {
	args := append([]string{"exec"}, options.ToArgs(opts)...)
	args = append(args, name, command)
	return append(args, cmdArgs...)
}

// Exec runs a command in a running container and returns its combined output.
func (c *ContainerSvc) Exec(ctx context.Context, opts options.ExecContainer, name, command string, cmdArgs ...string) (string, error) {
	cmd := c.command(ctx, c.ExecArgs(opts, name, command, cmdArgs...)...)
	ownProcessGroup(cmd)
	slog.InfoContext(ctx, "ContainerSvc.Exec", "name", name, "command", command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), newCommandError(ctx, cmd.Args, output, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// ExecStream executes a command in a running container with its stdio attached to the
// given streams. It returns a wait func that blocks until the command exits.
func (c *ContainerSvc) ExecStream(ctx context.Context, opts options.ExecContainer, name, command string, env []string, stdin io.Reader, stdout, stderr io.Writer, cmdArgs ...string) (func() error, error) {
	cmd := c.command(ctx, c.ExecArgs(opts, name, command, cmdArgs...)...)
	slog.InfoContext(ctx, "ContainerSvc.ExecStream", "cmd", strings.Join(cmd.Args, " "))
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}

	stdinFile, ok := stdin.(*os.File)
	if !opts.TTY || (ok && term.IsTerminal(int(stdinFile.Fd()))) {
		cmd.Stdin = stdin
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Start(); err != nil {
			return nil, newCommandError(ctx, cmd.Args, nil, err)
		}
	} else {
		slog.InfoContext(ctx, "ContainerSvc.ExecStream: using pseudo-terminal")

		ptmx, err := pty.Start(cmd)
		if err != nil {
			return nil, newCommandError(ctx, cmd.Args, nil, err)
		}
		go io.Copy(ptmx, stdin)
		go io.Copy(stdout, ptmx)
		return func() error {
			defer ptmx.Close()
			return waitErr(ctx, cmd)
		}, nil
	}

	return func() error {
		return waitErr(ctx, cmd)
	}, nil
}

func waitErr(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Wait(); err != nil {
		return newCommandError(ctx, cmd.Args, nil, err)
	}
	return nil
}

// List returns the containers matching opts. The format is forced to json.
func (c *ContainerSvc) List(ctx context.Context, opts options.ListContainers) ([]types.Container, error) {
	opts.Format = "json"
	args := append([]string{"ps"}, options.ToArgs(opts)...)
	cmd := c.command(ctx, args...)
	ownProcessGroup(cmd)
	output, err := cmd.Output()
	if err != nil {
		return nil, newCommandError(ctx, cmd.Args, nil, err)
	}
	var containers []types.Container
	if err := json.Unmarshal(output, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
