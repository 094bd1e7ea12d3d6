package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/banksean/devctr/config"
	"github.com/banksean/devctr/options"
	"github.com/banksean/devctr/podman"
	"github.com/banksean/devctr/types"
	"golang.org/x/sync/errgroup"
)

type StatusCmd struct {
	Names []string `arg:"" optional:"" predictor:"container" help:"only show these containers"`
	Jobs  int      `short:"j" default:"4" help:"number of containers to inspect at once"`
}

type statusRow struct {
	Name     string
	IP       string
	Identity string
	State    string
	Desired  string
	Current  string
	Status   string
}

// inspector is the read-only part of the engine status needs.
type inspector interface {
	List(ctx context.Context, opts options.ListContainers) ([]types.Container, error)
	InspectLabel(ctx context.Context, name, key string) string
}

func (c *StatusCmd) Run(cctx *Context) error {
	f, err := cctx.loadConfig()
	if err != nil {
		return err
	}
	specs, err := selectSpecs(f, c.Names)
	if err != nil {
		return err
	}
	rows, err := collectStatus(cctx, cctx.containerSvc(f.Settings), f.Settings, specs, c.Jobs)
	if err != nil {
		return err
	}
	writeStatus(cctx.Stdout, rows)
	return nil
}

// collectStatus lists the engine's containers and reads each configured container's
// fingerprint label, concurrently. It never changes anything.
func collectStatus(ctx context.Context, eng inspector, s config.Settings, specs []config.ContainerSpec, jobs int) ([]statusRow, error) {
	rows := make([]statusRow, len(specs))
	var states map[string]string

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	g.Go(func() error {
		list, err := eng.List(gctx, options.ListContainers{All: true})
		if err != nil {
			return err
		}
		states = make(map[string]string, len(list))
		for _, ctr := range list {
			states[ctr.Name()] = ctr.State
		}
		return nil
	})
	for i, spec := range specs {
		g.Go(func() error {
			row := statusRow{
				Name:    spec.Name,
				IP:      spec.IP,
				Desired: config.Fingerprint(spec),
				Current: eng.InspectLabel(gctx, spec.Name, s.LabelKey),
			}
			if id, err := spec.Identity(); err == nil {
				row.Identity = id.String()
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "collectStatus", "error", err)
		return nil, err
	}

	for i := range rows {
		state, ok := states[rows[i].Name]
		switch {
		case !ok:
			rows[i].State = "absent"
			rows[i].Status = "will be created"
		case rows[i].Current == rows[i].Desired:
			rows[i].State = state
			rows[i].Status = "up-to-date"
		default:
			rows[i].State = state
			rows[i].Status = "drift"
		}
	}
	return rows, nil
}

func writeStatus(out io.Writer, rows []statusRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIP\tUID:GID\tSTATE\tFINGERPRINT\tSTATUS\t")
	for _, r := range rows {
		status := r.Status
		if status == "drift" {
			cur := config.Short(r.Current)
			if cur == "" {
				cur = "(none)"
			}
			status = fmt.Sprintf("drift (container has %s)", cur)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", r.Name, r.IP, r.Identity, r.State, config.Short(r.Desired), status)
	}
	w.Flush()
}

var _ inspector = (*podman.ContainerSvc)(nil)
