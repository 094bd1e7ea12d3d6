package podman

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandError is returned when an engine command fails. ExitCode carries the engine's
// own exit status so callers can hand it back to the shell unchanged. It is negative
// when the engine was killed by a signal and so never returned a status.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	var msg string
	if e.ExitCode < 0 {
		msg = fmt.Sprintf("%s: killed: %v", strings.Join(e.Args, " "), e.Err)
	} else {
		msg = fmt.Sprintf("%s: exit status %d", strings.Join(e.Args, " "), e.ExitCode)
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// newCommandError wraps a failed engine command. When ctx is done the context's error
// is wrapped as well, so errors.Is(err, context.Canceled) holds for interrupted runs.
func newCommandError(ctx context.Context, args []string, output []byte, err error) *CommandError {
	ce := &CommandError{
		Args:     args,
		ExitCode: 1,
		Output:   strings.TrimSpace(string(output)),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code != 0 {
			ce.ExitCode = code
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		ce.ExitCode = -1
		if !errors.Is(err, ctxErr) {
			ce.Err = fmt.Errorf("%w: %w", ctxErr, err)
		}
	}
	return ce
}

// ExitCode returns the exit code carried by err, and whether err is a CommandError.
// A negative code means the engine did not exit on its own.
func ExitCode(err error) (int, bool) {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.ExitCode, true
	}
	return 0, false
}
