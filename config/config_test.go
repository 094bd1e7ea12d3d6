package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/banksean/devctr/identity"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "containers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	f, err := Load(writeFile(t, `
containers:
  - name: dev1
    ip: 10.0.0.7
  - name: dev2
    ip: 10.0.0.8
    user: alice
    image: quay.io/rockylinux/rockylinux:8
    hostname: alice-box
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(f.Settings, DefaultSettings()) {
		t.Errorf("Settings = %+v, want defaults", f.Settings)
	}
	want := []ContainerSpec{
		{Name: "dev1", IP: "10.0.0.7", User: "dev", Image: DefaultImage, Hostname: "dev1"},
		{Name: "dev2", IP: "10.0.0.8", User: "alice", Image: "quay.io/rockylinux/rockylinux:8", Hostname: "alice-box"},
	}
	if !reflect.DeepEqual(f.Containers, want) {
		t.Errorf("Containers = %+v\nwant %+v", f.Containers, want)
	}
}

func TestLoadSettingsOverride(t *testing.T) {
	f, err := Load(writeFile(t, `
settings:
  engine: [podman]
  network: lab-net
  default_image: localhost/local/r9-systemd
  default_password: false
containers:
  - name: dev1
    ip: 10.0.0.7
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(f.Settings.Engine, []string{"podman"}) {
		t.Errorf("Engine = %v", f.Settings.Engine)
	}
	if f.Settings.Network != "lab-net" {
		t.Errorf("Network = %q", f.Settings.Network)
	}
	if f.Containers[0].Image != "localhost/local/r9-systemd" {
		t.Errorf("Image = %q", f.Containers[0].Image)
	}
	if _, set := f.Containers[0].PasswordStep(f.Settings); set {
		t.Error("default_password: false should disable the password step")
	}
	if f.Settings.LabelKey != DefaultLabelKey {
		t.Errorf("LabelKey = %q", f.Settings.LabelKey)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
		wantIs  error
	}{
		{name: "empty", doc: "", wantErr: "empty"},
		{name: "malformed yaml", doc: "containers: [", wantErr: "yaml"},
		{name: "unknown field", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    ipaddr: 1.2.3.4\n", wantErr: "ipaddr"},
		{name: "missing name", doc: "containers:\n  - ip: 10.0.0.7\n", wantErr: "name is required"},
		{name: "missing ip", doc: "containers:\n  - name: dev1\n", wantErr: "ip is required"},
		{name: "invalid ip", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.999\n", wantIs: identity.ErrInvalidAddress},
		{name: "bad user", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    user: \"a b\"\n", wantIs: identity.ErrInvalidUserName},
		{name: "bad image", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    image: \"UPPER/Case::x\"\n", wantErr: "image"},
		{name: "bad hostname", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    hostname: under_score\n", wantErr: "hostname"},
		{name: "bad container name", doc: "containers:\n  - name: -dev1\n    ip: 10.0.0.7\n", wantErr: "name"},
		{name: "uid_gid too low", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    uid_gid: 0\n", wantIs: identity.ErrInvalidID},
		{name: "bad authorized key", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    authorized_keys: [not-a-key]\n", wantErr: "authorized_keys[0]"},
		{name: "password true", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n    password: true\n", wantErr: "password must be a string or false"},
		{name: "duplicate name", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n  - name: dev1\n    ip: 10.0.0.8\n", wantErr: "already used"},
		{name: "relative home mount", doc: "settings:\n  home_mount: home\ncontainers:\n  - name: dev1\n    ip: 10.0.0.7\n", wantErr: "home_mount"},
		{name: "duplicate ip", doc: "containers:\n  - name: dev1\n    ip: 10.0.0.7\n  - name: dev2\n    ip: 10.0.0.7\n", wantErr: "already used"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.doc))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error %v should wrap %v", err, tt.wantIs)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v", err)
	}
}

func TestPassword(t *testing.T) {
	f, err := Parse([]byte(`
containers:
  - name: a
    ip: 10.0.0.1
  - name: b
    ip: 10.0.0.2
    password: s3cret
  - name: c
    ip: 10.0.0.3
    password: false
  - name: d
    ip: 10.0.0.4
    password: "false"
`))
	if err != nil {
		t.Fatal(err)
	}
	s := f.Settings
	tests := []struct {
		name  string
		value string
		set   bool
	}{
		{name: "a", value: DefaultPassword, set: true},
		{name: "b", value: "s3cret", set: true},
		{name: "c", value: "", set: false},
		{name: "d", value: "false", set: true},
	}
	for _, tt := range tests {
		c, ok := f.Lookup(tt.name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", tt.name)
		}
		value, set := c.PasswordStep(s)
		if value != tt.value || set != tt.set {
			t.Errorf("%s: PasswordStep() = %q, %v; want %q, %v", tt.name, value, set, tt.value, tt.set)
		}
	}
}

func TestProvisioning(t *testing.T) {
	s := DefaultSettings()
	c := ContainerSpec{Name: "dev1", IP: "10.0.0.7", User: "alice", Wheel: boolPtr(false)}.Resolve(s)
	p, err := c.Provisioning(s)
	if err != nil {
		t.Fatal(err)
	}
	if p.Identity != (identity.Identity{UID: 11007, GID: 11007}) {
		t.Errorf("Identity = %v", p.Identity)
	}
	if p.AdminGroup != "" {
		t.Errorf("AdminGroup = %q, want none with wheel: false", p.AdminGroup)
	}
	if p.HomeDir != "/home/alice" || p.Shell != "/bin/bash" {
		t.Errorf("HomeDir = %q, Shell = %q", p.HomeDir, p.Shell)
	}
	if !p.SetPassword || p.Password != DefaultPassword {
		t.Errorf("password step = %q, %v", p.Password, p.SetPassword)
	}

	c.IP = "10.0.0.999"
	if _, err := c.Provisioning(s); !errors.Is(err, identity.ErrInvalidAddress) {
		t.Errorf("Provisioning() error = %v, want ErrInvalidAddress", err)
	}
}

func TestProvisioningCustomHomeMount(t *testing.T) {
	f, err := Load(writeFile(t, `
settings:
  home_mount: /srv/home
containers:
  - name: dev1
    ip: 10.0.0.7
    user: alice
    authorized_keys:
      - ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8g alice@laptop
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, err := f.Containers[0].Provisioning(f.Settings)
	if err != nil {
		t.Fatal(err)
	}
	script, err := p.Script()
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	for _, want := range []string{"useradd -m -d /srv/home/alice ", "/srv/home/alice/.ssh/authorized_keys"} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "containers.yaml")
	if err := WriteStarter(path, "brave-otter", "10.88.0.10", "dev", false); err != nil {
		t.Fatalf("WriteStarter() error = %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("starter file doesn't load: %v", err)
	}
	if len(f.Containers) != 1 || f.Containers[0].Name != "brave-otter" {
		t.Errorf("Containers = %+v", f.Containers)
	}
	if err := WriteStarter(path, "x", "10.88.0.11", "dev", false); err == nil {
		t.Error("WriteStarter() should refuse to overwrite")
	}
	if err := WriteStarter(path, "x", "10.88.0.11", "dev", true); err != nil {
		t.Errorf("WriteStarter(overwrite) error = %v", err)
	}
}
