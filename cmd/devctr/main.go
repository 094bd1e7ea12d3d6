package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/podman"
	"github.com/banksean/devctr/telemetry"
	"github.com/banksean/devctr/version"
	kongcompletion "github.com/jotaen/kong-completion"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Context struct {
	context.Context
	ConfigPath     string
	DryRun         bool
	JournalPath    string
	LogFile        string
	TracerProvider trace.TracerProvider
	Stdin          io.Reader
	Stdout         io.Writer
	Stderr         io.Writer
}

type CLI struct {
	Config   string `short:"c" default:"containers.yaml" type:"path" placeholder:"<file>" predictor:"yaml" help:"containers file to reconcile"`
	DryRun   bool   `help:"print engine commands and provisioning scripts instead of running them"`
	LogFile  string `default:"${log_file}" placeholder:"<log-file-path>" help:"location of the (rotated) log file"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" placeholder:"<debug|info|warn|error>" help:"the logging level (debug, info, warn, error)"`
	Journal  string `default:"${journal}" type:"path" placeholder:"<db-path>" help:"reconcile history database"`

	Apply       ApplyCmd                  `cmd:"" default:"withargs" help:"create missing containers and report drift (default)"`
	Status      StatusCmd                 `cmd:"" help:"show each configured container's state without changing anything"`
	Fingerprint FingerprintCmd            `cmd:"" help:"print the fingerprint of each configured container"`
	Provision   ProvisionCmd              `cmd:"" help:"re-run user provisioning inside an existing container"`
	Enter       EnterCmd                  `cmd:"" help:"open a login shell in a container as its configured user"`
	Init        InitCmd                   `cmd:"" help:"write a starter containers file"`
	History     HistoryCmd                `cmd:"" help:"list past reconcile outcomes"`
	SSHConfig   SSHConfigCmd              `cmd:"" name:"ssh-config" help:"write an ssh_config with a Host entry per container"`
	Logs        LogsCmd                   `cmd:"" help:"print devctr's log file in a readable form"`
	Doc         DocCmd                    `cmd:"" help:"print complete command help formatted as markdown"`
	Version     VersionCmd                `cmd:"" help:"print version infomation about this command"`
	Completion  kongcompletion.Completion `cmd:"" help:"print shell code to enable tab completion"`
}

func (c *CLI) initSlog() io.Closer {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	w := &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Info("slog initialized", "version", version.Get().Short())
	return w
}

const description = `Provision and reconcile podman development containers from a declarative list.

Each container in the containers file is created once, labelled with a fingerprint of
its configuration, and given a login user whose uid/gid is derived from its IP address.
Existing containers are never modified: if the configuration changes, devctr reports the
drift and leaves the container alone.`

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "devctr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "devctr")
	}
	return filepath.Join(home, ".local", "state", "devctr")
}

func main() {
	var cli CLI
	parser := kong.Must(&cli,
		kong.Name("devctr"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Configuration(kongyaml.Loader, "/etc/devctr/config.yaml", "~/.config/devctr/config.yaml"),
		kong.Vars{
			"log_file":     filepath.Join(stateDir(), "devctr.log"),
			"journal":      filepath.Join(stateDir(), "journal.db"),
			"default_user": config.DefaultUser,
		},
	)
	kongcompletion.Register(parser,
		kongcompletion.WithPredictor("container", containerPredictor()),
		kongcompletion.WithPredictor("yaml", yamlPredictor()),
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logCloser := cli.initSlog()
	os.Exit(run(kctx, &cli, logCloser))
}

func run(kctx *kong.Context, cli *CLI, logCloser io.Closer) int {
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, shutdown, err := telemetry.Setup(ctx, "devctr", version.Get().Short())
	if err != nil {
		slog.WarnContext(ctx, "telemetry.Setup", "error", err)
		fmt.Fprintf(os.Stderr, "devctr: tracing disabled: %v\n", err)
		tp, shutdown = otel.GetTracerProvider(), func(context.Context) error { return nil }
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			slog.WarnContext(sctx, "telemetry shutdown", "error", err)
		}
	}()

	err = kctx.Run(&Context{
		Context:        ctx,
		ConfigPath:     cli.Config,
		DryRun:         cli.DryRun,
		JournalPath:    cli.Journal,
		LogFile:        cli.LogFile,
		TracerProvider: tp,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	})
	if err != nil {
		slog.ErrorContext(ctx, "command failed", "command", kctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "devctr: error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps err to the process exit status. Engine failures keep the engine's own
// status; everything else is 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := podman.ExitCode(err); ok && code > 0 {
		return code
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
