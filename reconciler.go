package devctr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/journal"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/banksean/devctr"

// ErrContainerNotFound is returned by operations that need an existing container.
var ErrContainerNotFound = errors.New("container not found")

// Outcome is what reconciling one container did.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeUpToDate    Outcome = "up-to-date"
	OutcomeDrift       Outcome = "drift"
	OutcomeProvisioned Outcome = "provisioned"
)

// Result describes one container after reconciliation.
type Result struct {
	Name    string
	Outcome Outcome
	// Desired is the fingerprint of the configured spec.
	Desired string
	// Current is the fingerprint label found on the container. It is empty for
	// containers created in this run.
	Current string
}

// Recorder stores reconcile outcomes. *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, e journal.Event) error
}

// Reconciler decides, for each configured container, whether to create it, leave
// it alone, or warn that it has drifted. It never modifies or removes an existing
// container.
type Reconciler struct {
	settings  config.Settings
	runtime   Runtime
	messenger UserMessenger
	recorder  Recorder
	tracer    trace.Tracer
	dryRun    bool
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithMessenger sends progress lines and warnings to m.
func WithMessenger(m UserMessenger) ReconcilerOption {
	return func(r *Reconciler) {
		r.messenger = m
	}
}

// WithRecorder journals every outcome to rec. Dry runs record nothing.
func WithRecorder(rec Recorder) ReconcilerOption {
	return func(r *Reconciler) {
		r.recorder = rec
	}
}

// WithTracerProvider traces runs with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) ReconcilerOption {
	return func(r *Reconciler) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// WithDryRun marks the run as a dry run. The caller is still responsible for
// passing a dry-run Runtime.
func WithDryRun(dryRun bool) ReconcilerOption {
	return func(r *Reconciler) {
		r.dryRun = dryRun
	}
}

// NewReconciler returns a Reconciler that applies specs through rt.
func NewReconciler(settings config.Settings, rt Runtime, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		settings:  settings.WithDefaults(),
		runtime:   rt,
		messenger: NewNullMessenger(),
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile processes specs in order. The first error aborts the run; results for
// the containers handled before it are still returned.
func (r *Reconciler) Reconcile(ctx context.Context, specs []config.ContainerSpec) ([]Result, error) {
	runID := uuid.NewString()
	ctx, span := r.tracer.Start(ctx, "Reconcile", trace.WithAttributes(
		attribute.String("devctr.run_id", runID),
		attribute.Int("devctr.containers", len(specs)),
		attribute.Bool("devctr.dry_run", r.dryRun),
	))
	defer span.End()
	slog.InfoContext(ctx, "Reconciler.Reconcile", "runID", runID, "containers", len(specs), "dryRun", r.dryRun)

	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		res, err := r.reconcileOne(ctx, runID, spec)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, runID string, spec config.ContainerSpec) (Result, error) {
	spec = spec.Resolve(r.settings)
	ctx, span := r.tracer.Start(ctx, "ReconcileContainer", trace.WithAttributes(
		attribute.String("devctr.container", spec.Name),
	))
	defer span.End()

	res := Result{Name: spec.Name, Desired: config.Fingerprint(spec)}
	exists, err := r.runtime.Exists(ctx, spec.Name)
	if err != nil {
		return Result{}, r.fail(span, fmt.Errorf("failed to check %s: %w", spec.Name, err))
	}

	if !exists {
		if err := r.create(ctx, spec, res.Desired); err != nil {
			return Result{}, r.fail(span, err)
		}
		res.Outcome = OutcomeCreated
	} else {
		res.Current = r.runtime.CurrentFingerprint(ctx, spec.Name)
		if err := ctx.Err(); err != nil {
			return Result{}, r.fail(span, err)
		}
		if res.Current == res.Desired {
			res.Outcome = OutcomeUpToDate
			r.messenger.Message(ctx, fmt.Sprintf("%s: up-to-date; skipping", spec.Name))
		} else {
			res.Outcome = OutcomeDrift
			r.messenger.Warn(ctx, DriftWarning(spec.Name, res.Current, res.Desired))
			slog.WarnContext(ctx, "Reconciler drift", "name", spec.Name, "current", res.Current, "desired", res.Desired)
		}
	}

	span.SetAttributes(
		attribute.String("devctr.outcome", string(res.Outcome)),
		attribute.String("devctr.fingerprint", res.Desired),
	)
	r.record(ctx, runID, res)
	return res, nil
}

// create derives the identity and builds the provisioning script before touching the
// engine, so a bad address or user name leaves nothing behind.
func (r *Reconciler) create(ctx context.Context, spec config.ContainerSpec, fingerprint string) error {
	prov, err := spec.Provisioning(r.settings)
	if err != nil {
		return fmt.Errorf("%s: %w", spec.Name, err)
	}
	script, err := prov.Script()
	if err != nil {
		return fmt.Errorf("%s: %w", spec.Name, err)
	}
	r.messenger.Message(ctx, fmt.Sprintf("%s: creating (%s, %s)", spec.Name, spec.IP, prov.Identity))
	if err := r.runtime.Create(ctx, spec, fingerprint); err != nil {
		return err
	}
	if err := r.runtime.Exec(ctx, spec.Name, "root", script); err != nil {
		return err
	}
	if !r.dryRun {
		r.messenger.Message(ctx, "▶ enter: "+EnterHint(r.settings, spec))
	}
	return nil
}

// ProvisionUser re-runs user provisioning inside an existing container.
func (r *Reconciler) ProvisionUser(ctx context.Context, spec config.ContainerSpec) error {
	spec = spec.Resolve(r.settings)
	ctx, span := r.tracer.Start(ctx, "ProvisionUser", trace.WithAttributes(
		attribute.String("devctr.container", spec.Name),
	))
	defer span.End()

	prov, err := spec.Provisioning(r.settings)
	if err != nil {
		return r.fail(span, fmt.Errorf("%s: %w", spec.Name, err))
	}
	script, err := prov.Script()
	if err != nil {
		return r.fail(span, fmt.Errorf("%s: %w", spec.Name, err))
	}
	// A dry run only knows about containers it created itself, so it can't check.
	if !r.dryRun {
		exists, err := r.runtime.Exists(ctx, spec.Name)
		if err != nil {
			return r.fail(span, fmt.Errorf("failed to check %s: %w", spec.Name, err))
		}
		if !exists {
			return r.fail(span, fmt.Errorf("%w: %s", ErrContainerNotFound, spec.Name))
		}
	}
	if err := r.runtime.Exec(ctx, spec.Name, "root", script); err != nil {
		return r.fail(span, err)
	}
	r.messenger.Message(ctx, fmt.Sprintf("%s: provisioned %s (%s)", spec.Name, spec.User, prov.Identity))
	r.record(ctx, uuid.NewString(), Result{
		Name:    spec.Name,
		Outcome: OutcomeProvisioned,
		Desired: config.Fingerprint(spec),
		Current: r.runtime.CurrentFingerprint(ctx, spec.Name),
	})
	return nil
}

func (r *Reconciler) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (r *Reconciler) record(ctx context.Context, runID string, res Result) {
	if r.recorder == nil || r.dryRun {
		return
	}
	err := r.recorder.Record(ctx, journal.Event{
		RunID:       runID,
		Container:   res.Name,
		Outcome:     string(res.Outcome),
		DesiredHash: res.Desired,
		CurrentHash: res.Current,
	})
	if err != nil {
		slog.WarnContext(ctx, "Reconciler.record", "name", res.Name, "error", err)
	}
}

// DriftWarning is the message shown when a container's label doesn't match its spec.
func DriftWarning(name, current, desired string) string {
	cur := config.Short(current)
	if cur == "" {
		cur = "(none)"
	}
	return fmt.Sprintf("WARNING: %s: drift detected: container has %s, config wants %s; recreate manually to apply",
		name, cur, config.Short(desired))
}

// EnterHint is the command an operator runs to get a shell in a new container.
func EnterHint(s config.Settings, spec config.ContainerSpec) string {
	argv := append(slices.Clone(s.Engine), "exec", "-it", "--user", spec.User, spec.Name, "bash")
	return ShellJoin(argv)
}
