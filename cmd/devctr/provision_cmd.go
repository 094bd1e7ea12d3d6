package main

import (
	"log/slog"

	"github.com/banksean/devctr"
)

type ProvisionCmd struct {
	Name string `arg:"" predictor:"container" help:"name of the container"`
}

func (c *ProvisionCmd) Run(cctx *Context) error {
	slog.InfoContext(cctx, "ProvisionCmd.Run", "name", c.Name, "dryRun", cctx.DryRun)
	f, err := cctx.loadConfig()
	if err != nil {
		return err
	}
	spec, err := lookupSpec(f, c.Name)
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
		rt = devctr.NewPodmanRuntime(f.Settings, svc)
		if j, err := cctx.openJournal(); err != nil {
			slog.WarnContext(cctx, "openJournal", "error", err)
		} else {
			defer j.Close()
			opts = append(opts, devctr.WithRecorder(j))
		}
	}
	return devctr.NewReconciler(f.Settings, rt, opts...).ProvisionUser(cctx, spec)
}
