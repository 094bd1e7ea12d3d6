package main

import (
	"fmt"

	"github.com/banksean/devctr/config"
)

type FingerprintCmd struct {
	Names     []string `arg:"" optional:"" predictor:"container" help:"only print these containers"`
	Canonical bool     `help:"also print the canonical JSON each fingerprint is computed from"`
}

func (c *FingerprintCmd) Run(cctx *Context) error {
	f, err := cctx.loadConfig()
	if err != nil {
		return err
	}
	specs, err := selectSpecs(f, c.Names)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		fmt.Fprintf(cctx.Stdout, "%s  %s\n", config.Fingerprint(spec), spec.Name)
		if c.Canonical {
			fmt.Fprintf(cctx.Stdout, "    %s\n", config.CanonicalJSON(spec))
		}
	}
	return nil
}
