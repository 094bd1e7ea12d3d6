package podman

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/banksean/devctr/types"
)

// Version returns the engine client version, or an error.
func (c *ContainerSvc) Version(ctx context.Context) (string, error) {
	cmd := c.command(ctx, "version", "--format", "json")
	ownProcessGroup(cmd)
	slog.InfoContext(ctx, "ContainerSvc.Version", "cmd", strings.Join(cmd.Args, " "))
	output, err := cmd.Output()
	if err != nil {
		return "", newCommandError(ctx, cmd.Args, nil, err)
	}
	var v types.Version
	if err := json.Unmarshal(output, &v); err != nil {
		return "", fmt.Errorf("couldn't parse version output: %w", err)
	}
	return v.Client.Version, nil
}

// NetworkExists reports whether the named network has been created.
func (c *ContainerSvc) NetworkExists(ctx context.Context, network string) (bool, error) {
	return c.exists(ctx, "network", "exists", network)
}

// ImageExists reports whether the image is present in local storage.
func (c *ContainerSvc) ImageExists(ctx context.Context, image string) (bool, error) {
	return c.exists(ctx, "image", "exists", image)
}

func (c *ContainerSvc) exists(ctx context.Context, args ...string) (bool, error) {
	cmd := c.command(ctx, args...)
	slog.DebugContext(ctx, "ContainerSvc.exists", "cmd", strings.Join(cmd.Args, " "))
	ownProcessGroup(cmd)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return false, nil
	}
	return false, newCommandError(ctx, cmd.Args, nil, err)
}
