package config

import "slices"

// Settings are the host-wide knobs shared by every container in a file. They come
// from the optional top-level `settings:` block; unset fields take the defaults below.
type Settings struct {
	// Engine is the argv prefix used to invoke the container engine.
	Engine []string `yaml:"engine"`
	// Network is the pre-existing engine network every container is attached to.
	Network string `yaml:"network"`
	// DefaultImage is used for containers that don't name an image.
	DefaultImage string `yaml:"default_image"`
	// DefaultUser is used for containers that don't name a user.
	DefaultUser string `yaml:"default_user"`
	// DefaultPassword is set for containers that don't configure a password.
	// `false` disables the password step unless a container sets one.
	DefaultPassword Password `yaml:"default_password"`
	// AdminGroup is the group granted to users with wheel enabled.
	AdminGroup string `yaml:"admin_group"`
	// LoginShell is the shell given to newly created users.
	LoginShell string `yaml:"login_shell"`
	// HomeMount is where each container's named volume is mounted.
	HomeMount string `yaml:"home_mount"`
	// VolumePrefix is prepended to the container name to name its home volume.
	VolumePrefix string `yaml:"volume_prefix"`
	// CgroupMount is the read-only cgroup bind mount given to systemd images.
	CgroupMount string `yaml:"cgroup_mount"`
	// LabelKey is the container label that stores the fingerprint.
	LabelKey string `yaml:"label_key"`
}

const (
	DefaultNetwork      = "dev2-net"
	DefaultImage        = "localhost/local/r8-systemd"
	DefaultUser         = "dev"
	DefaultPassword     = "changeme"
	DefaultAdminGroup   = "wheel"
	DefaultLoginShell   = "/bin/bash"
	DefaultHomeMount    = "/home"
	DefaultVolumePrefix = "vol-"
	DefaultCgroupMount  = "/sys/fs/cgroup:/sys/fs/cgroup:ro"
	DefaultLabelKey     = "spec-hash"
)

// DefaultEngine runs podman through sudo so containers can have static IPs on a
// rootful network.
var DefaultEngine = []string{"sudo", "podman"}

// DefaultSettings returns Settings with every field at its default.
func DefaultSettings() Settings {
	return Settings{}.WithDefaults()
}

// WithDefaults returns a copy of s with zero fields replaced by defaults.
func (s Settings) WithDefaults() Settings {
	if len(s.Engine) == 0 {
		s.Engine = slices.Clone(DefaultEngine)
	}
	if s.Network == "" {
		s.Network = DefaultNetwork
	}
	if s.DefaultImage == "" {
		s.DefaultImage = DefaultImage
	}
	if s.DefaultUser == "" {
		s.DefaultUser = DefaultUser
	}
	if !s.DefaultPassword.Disabled && s.DefaultPassword.Value == "" {
		s.DefaultPassword.Value = DefaultPassword
	}
	if s.AdminGroup == "" {
		s.AdminGroup = DefaultAdminGroup
	}
	if s.LoginShell == "" {
		s.LoginShell = DefaultLoginShell
	}
	if s.HomeMount == "" {
		s.HomeMount = DefaultHomeMount
	}
	if s.VolumePrefix == "" {
		s.VolumePrefix = DefaultVolumePrefix
	}
	if s.CgroupMount == "" {
		s.CgroupMount = DefaultCgroupMount
	}
	if s.LabelKey == "" {
		s.LabelKey = DefaultLabelKey
	}
	return s
}
