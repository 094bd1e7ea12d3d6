package sshconf

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kevinburke/ssh_config"
)

func TestRender(t *testing.T) {
	data, err := Render([]Entry{
		{Alias: "dev1", HostName: "10.0.0.7", User: "alice"},
		{Alias: "dev2", HostName: "10.0.0.8", User: "dev", Port: "2222"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("rendered config doesn't decode: %v\n%s", err, data)
	}

	tests := []struct {
		alias, key, want string
	}{
		{"dev1", "HostName", "10.0.0.7"},
		{"dev1", "User", "alice"},
		{"dev2", "HostName", "10.0.0.8"},
		{"dev2", "Port", "2222"},
		{"dev3", "HostName", ""},
	}
	for _, tt := range tests {
		got, err := cfg.Get(tt.alias, tt.key)
		if err != nil {
			t.Fatalf("Get(%s, %s) error = %v", tt.alias, tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Get(%s, %s) = %q, want %q", tt.alias, tt.key, got, tt.want)
		}
	}
}

func TestWriteKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devctr", "ssh_config")
	fsys := RealFileSystem{}

	if err := Write(fsys, path, []Entry{{Alias: "dev1", HostName: "10.0.0.7"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := Write(fsys, path, []Entry{{Alias: "dev2", HostName: "10.0.0.8"}}); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cur), "dev2") || strings.Contains(string(cur), "dev1") {
		t.Errorf("current file = %q", cur)
	}
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if !strings.Contains(string(bak), "dev1") {
		t.Errorf("backup = %q, want the previous contents", bak)
	}
}

func TestEnsureInclude(t *testing.T) {
	const include = "/home/alice/.config/devctr/ssh_config"
	tests := []struct {
		name     string
		existing *string
		want     IncludeStatus
		wantTop  bool
	}{
		{name: "no config file", existing: nil, want: IncludeAdded, wantTop: true},
		{name: "include missing", existing: ptr("Host example\n  HostName example.com\n"), want: IncludeAdded, wantTop: true},
		{name: "include at top", existing: ptr("Include " + include + "\n\nHost example\n  HostName example.com\n"), want: IncludePresent, wantTop: true},
		{name: "include inside a host block", existing: ptr("Host example\n  HostName example.com\n  Include " + include + "\n"), want: IncludeMisplaced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userConfig := filepath.Join(t.TempDir(), ".ssh", "config")
			if tt.existing != nil {
				if err := os.MkdirAll(filepath.Dir(userConfig), 0o700); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(userConfig, []byte(*tt.existing), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			got, err := EnsureInclude(context.Background(), RealFileSystem{}, userConfig, include)
			if err != nil {
				t.Fatalf("EnsureInclude() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EnsureInclude() = %v, want %v", got, tt.want)
			}
			data, err := os.ReadFile(userConfig)
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantTop && !strings.HasPrefix(string(data), "Include "+include+"\n") {
				t.Errorf("config doesn't start with the include line:\n%s", data)
			}
			if tt.existing != nil && !strings.Contains(string(data), *tt.existing) {
				t.Errorf("existing config was not preserved:\n%s", data)
			}
			if n := strings.Count(string(data), "Include "+include); n != 1 {
				t.Errorf("include appears %d times", n)
			}
		})
	}
}

type failingFS struct {
	RealFileSystem
	err error
}

func (f failingFS) SafeWriteFile(name string, data []byte, perm fs.FileMode) error {
	return f.err
}

func TestEnsureIncludeWriteFailure(t *testing.T) {
	userConfig := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(userConfig, []byte("Host x\n  HostName y\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("disk full")
	_, err := EnsureInclude(context.Background(), failingFS{err: boom}, userConfig, "/tmp/devctr_ssh_config")
	if !errors.Is(err, boom) {
		t.Errorf("EnsureInclude() error = %v, want %v", err, boom)
	}
}

func ptr(s string) *string { return &s }
