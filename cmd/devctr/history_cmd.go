package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/banksean/devctr/config"
)

type HistoryCmd struct {
	Limit int    `short:"n" default:"20" help:"number of entries to show (0 for all)"`
	Name  string `arg:"" optional:"" predictor:"container" help:"only show this container"`
}

func (c *HistoryCmd) Run(cctx *Context) error {
	j, err := cctx.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	events, err := j.List(cctx, c.Name, c.Limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cctx.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRUN\tCONTAINER\tOUTCOME\tDESIRED\tCURRENT\t")
	for _, e := range events {
		run := e.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.At.Local().Format(time.DateTime), run, e.Container, e.Outcome,
			config.Short(e.DesiredHash), config.Short(e.CurrentHash))
	}
	return w.Flush()
}
