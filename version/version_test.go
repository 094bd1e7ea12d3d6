package version

import (
	"runtime/debug"
	"testing"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "nothing known",
			info: Info{},
			want: "devel",
		},
		{
			name: "ldflags commit wins",
			info: Info{
				GitCommit: "0123456789abcdef0123",
				BuildInfo: &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}}},
			},
			want: "0123456789ab",
		},
		{
			name: "vcs revision, modified",
			info: Info{BuildInfo: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			}}},
			want: "abc123-dirty",
		},
		{
			name: "module version",
			info: Info{BuildInfo: &debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}}},
			want: "v0.3.1",
		},
		{
			name: "devel module",
			info: Info{BuildInfo: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}},
			want: "devel",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetting(t *testing.T) {
	info := Info{BuildInfo: &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.time", Value: "2024-05-01T00:00:00Z"}}}}
	if got := info.Setting("vcs.time"); got != "2024-05-01T00:00:00Z" {
		t.Errorf("Setting(vcs.time) = %q", got)
	}
	if got := (Info{}).Setting("vcs.time"); got != "" {
		t.Errorf("Setting() without build info = %q", got)
	}
}
