package main

import (
	"fmt"
	"time"

	"github.com/banksean/devctr/config"
	"github.com/goombaio/namegenerator"
)

type InitCmd struct {
	Name  string `placeholder:"<name>" help:"name of the first container (default: a random name)"`
	IP    string `default:"10.88.0.10" placeholder:"<ipv4>" help:"static address of the first container"`
	User  string `default:"${default_user}" placeholder:"<user>" help:"login user of the first container"`
	Force bool   `short:"f" help:"overwrite an existing containers file"`
}

func (c *InitCmd) Run(cctx *Context) error {
	if c.Name == "" {
		c.Name = namegenerator.NewNameGenerator(time.Now().UTC().UnixNano()).Generate()
	}
	if cctx.DryRun {
		fmt.Fprint(cctx.Stdout, config.Starter(c.Name, c.IP, c.User))
		return nil
	}
	if err := config.WriteStarter(cctx.ConfigPath, c.Name, c.IP, c.User, c.Force); err != nil {
		return err
	}
	fmt.Fprintf(cctx.Stdout, "wrote %s with container %s (%s)\n", cctx.ConfigPath, c.Name, c.IP)
	return nil
}
