package devctr

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTerminalMessenger(t *testing.T) {
	var out, errOut bytes.Buffer
	m := NewTerminalMessenger(&out, &errOut)
	m.Message(context.Background(), "dev1: up-to-date; skipping")
	m.Warn(context.Background(), "WARNING: dev2: drift detected")

	if got := out.String(); got != "\033[90mdev1: up-to-date; skipping\033[0m\n" {
		t.Errorf("stdout = %q", got)
	}
	if strings.Contains(out.String(), "WARNING") {
		t.Errorf("warning leaked to stdout: %q", out.String())
	}
	got := errOut.String()
	if !strings.Contains(got, "WARNING: dev2: drift detected") || strings.Contains(got, "\033[90m") {
		t.Errorf("stderr = %q, want an undimmed warning", got)
	}
}

func TestPlainMessenger(t *testing.T) {
	var out, errOut bytes.Buffer
	m := NewPlainMessenger(&out, &errOut)
	m.Message(context.Background(), "hello")
	m.Warn(context.Background(), "careful")
	if out.String() != "hello\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if errOut.String() != "careful\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}
