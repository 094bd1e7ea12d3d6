package main

import (
	"fmt"
	"log/slog"

	"github.com/banksean/devctr"
)

type ApplyCmd struct {
	Names        []string `arg:"" optional:"" predictor:"container" help:"only reconcile these containers"`
	SkipPrecheck bool     `help:"don't verify the engine and network before reconciling"`
}

func (c *ApplyCmd) Run(cctx *Context) error {
	slog.InfoContext(cctx, "ApplyCmd.Run", "names", c.Names, "dryRun", cctx.DryRun)

	f, err := cctx.loadConfig()
	if err != nil {
		return err
	}
	specs, err := selectSpecs(f, c.Names)
	if err != nil {
		return err
	}

	svc := cctx.containerSvc(f.Settings)
	msgr := cctx.messenger()
	opts := []devctr.ReconcilerOption{
		devctr.WithMessenger(msgr),
		devctr.WithTracerProvider(cctx.TracerProvider),
		devctr.WithDryRun(cctx.DryRun),
	}

	var rt devctr.Runtime
	if cctx.DryRun {
		rt = devctr.NewDryRunRuntime(f.Settings, svc, msgr)
	} else {
		if !c.SkipPrecheck {
			if err := verifyPrerequisites(cctx, svc, f.Settings); err != nil {
				return err
			}
		}
		rt = devctr.NewPodmanRuntime(f.Settings, svc)
		j, err := cctx.openJournal()
		if err != nil {
			// The journal is history only; reconciling doesn't depend on it.
			slog.WarnContext(cctx, "openJournal", "error", err)
			msgr.Warn(cctx, fmt.Sprintf("history disabled: %v", err))
		} else {
			defer j.Close()
			opts = append(opts, devctr.WithRecorder(j))
		}
	}

	results, err := devctr.NewReconciler(f.Settings, rt, opts...).Reconcile(cctx, specs)
	fmt.Fprintln(cctx.Stdout, summarize(results))
	return err
}

func summarize(results []devctr.Result) string {
	counts := map[devctr.Outcome]int{}
	for _, r := range results {
		counts[r.Outcome]++
	}
	return fmt.Sprintf("%d created, %d up-to-date, %d drifted",
		counts[devctr.OutcomeCreated], counts[devctr.OutcomeUpToDate], counts[devctr.OutcomeDrift])
}
