package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/podman"
)

type diagnosticCheck struct {
	Name string
	Run  func(context.Context, *podman.ContainerSvc, config.Settings) error
}

var diagnosticChecks = []diagnosticCheck{
	{
		Name: "Container engine is installed and answering",
		Run: func(ctx context.Context, svc *podman.ContainerSvc, s config.Settings) error {
			version, err := svc.Version(ctx)
			if err != nil {
				return fmt.Errorf("could not run %v: %w", s.Engine, err)
			}
			slog.InfoContext(ctx, "verifyPrerequisites", "version", version)
			return nil
		},
	},
	{
		Name: "Container network exists",
		Run: func(ctx context.Context, svc *podman.ContainerSvc, s config.Settings) error {
			ok, err := svc.NetworkExists(ctx, s.Network)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("network %q does not exist; create it with a subnet that covers the configured addresses", s.Network)
			}
			return nil
		},
	},
}

// verifyPrerequisites runs every check and returns the failures joined. It stops at
// the first failure when the engine itself can't be run.
func verifyPrerequisites(ctx context.Context, svc *podman.ContainerSvc, s config.Settings) error {
	var errs []error
	for _, check := range diagnosticChecks {
		if err := check.Run(ctx, svc, s); err != nil {
			slog.ErrorContext(ctx, "diagnosticCheck failed", "name", check.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", check.Name, err))
			if _, ok := podman.ExitCode(err); ok {
				break
			}
			continue
		}
		slog.InfoContext(ctx, "diagnosticCheck passed", "name", check.Name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("prerequisites check failed: %w", errors.Join(errs...))
	}
	return nil
}
