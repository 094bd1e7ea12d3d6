package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrintLogs(t *testing.T) {
	input := strings.Join([]string{
		`{"time":"2024-05-01T12:00:00Z","level":"DEBUG","msg":"userMsg","msg2":"x"}`,
		`{"time":"2024-05-01T12:00:01Z","level":"INFO","msg":"ContainerSvc.Run","cmd":"sudo podman run"}`,
		`not json at all`,
		`{"time":"2024-05-01T12:00:02Z","level":"WARN","msg":"Reconciler drift","name":"dev1"}`,
	}, "\n")

	var out bytes.Buffer
	if err := printLogs(strings.NewReader(input), &out, slog.LevelInfo, false); err != nil {
		t.Fatalf("printLogs() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `INFO ContainerSvc.Run {"cmd":"sudo podman run"}`) {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "not json at all" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], `WARN Reconciler drift {"name":"dev1"}`) {
		t.Errorf("line 2 = %q", lines[2])
	}
	if strings.Contains(out.String(), "\033[") {
		t.Error("uncolored output contains escape codes")
	}
}

func TestPrintLogsColor(t *testing.T) {
	var out bytes.Buffer
	in := `{"level":"ERROR","msg":"command failed"}`
	if err := printLogs(strings.NewReader(in), &out, slog.LevelDebug, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "\033[91mERROR\033[0m command failed") {
		t.Errorf("output = %q", out.String())
	}
}
