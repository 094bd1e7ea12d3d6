package config

import (
	"errors"
	"fmt"
	"path"
	"regexp"

	"github.com/banksean/devctr/identity"
	"github.com/google/go-containerregistry/pkg/name"
	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

var (
	containerNameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)
	hostnameRE      = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// ContainerSpec is one entry of the `containers:` list.
type ContainerSpec struct {
	Name     string `yaml:"name"`
	IP       string `yaml:"ip"`
	User     string `yaml:"user,omitempty"`
	Image    string `yaml:"image,omitempty"`
	Hostname string `yaml:"hostname,omitempty"`

	// UIDGID overrides the address-derived uid/gid.
	UIDGID *int `yaml:"uid_gid,omitempty"`
	// Password overrides Settings.DefaultPassword.
	Password *Password `yaml:"password,omitempty"`
	// Wheel grants Settings.AdminGroup. Nil means yes.
	Wheel *bool `yaml:"wheel,omitempty"`
	// AuthorizedKeys are installed as the user's ~/.ssh/authorized_keys.
	AuthorizedKeys []string `yaml:"authorized_keys,omitempty"`
}

// Password is a user's initial password. In YAML it is either a string, or `false`
// to skip setting a password at all.
type Password struct {
	Value    string
	Disabled bool
}

func (p *Password) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!bool" {
		var set bool
		if err := node.Decode(&set); err != nil {
			return err
		}
		if set {
			return fmt.Errorf("line %d: password must be a string or false", node.Line)
		}
		*p = Password{Disabled: true}
		return nil
	}
	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	*p = Password{Value: value}
	return nil
}

func (p Password) MarshalYAML() (any, error) {
	if p.Disabled {
		return false, nil
	}
	return p.Value, nil
}

// Resolve returns a copy of c with user, image and hostname defaults filled in.
// Optional fields that are nil stay nil so they don't take part in the fingerprint.
func (c ContainerSpec) Resolve(s Settings) ContainerSpec {
	if c.User == "" {
		c.User = s.DefaultUser
	}
	if c.Image == "" {
		c.Image = s.DefaultImage
	}
	if c.Hostname == "" {
		c.Hostname = c.Name
	}
	return c
}

// Validate checks a resolved spec. Every problem found is returned, joined.
func (c ContainerSpec) Validate() error {
	var errs []error
	switch {
	case c.Name == "":
		errs = append(errs, errors.New("name is required"))
	case !containerNameRE.MatchString(c.Name):
		errs = append(errs, fmt.Errorf("name %q must match %s", c.Name, containerNameRE))
	}
	if c.IP == "" {
		errs = append(errs, errors.New("ip is required"))
	} else if _, err := identity.ParseIPv4(c.IP); err != nil {
		errs = append(errs, err)
	}
	if err := identity.ValidateUserName(c.User); err != nil {
		errs = append(errs, err)
	}
	if _, err := name.ParseReference(c.Image); err != nil {
		errs = append(errs, fmt.Errorf("image %q: %w", c.Image, err))
	}
	if !hostnameRE.MatchString(c.Hostname) || len(c.Hostname) > 253 {
		errs = append(errs, fmt.Errorf("hostname %q is not a valid host name", c.Hostname))
	}
	if c.UIDGID != nil {
		if err := identity.ValidateID(*c.UIDGID); err != nil {
			errs = append(errs, fmt.Errorf("uid_gid: %w", err))
		}
	}
	for i, k := range c.AuthorizedKeys {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(k)); err != nil {
			errs = append(errs, fmt.Errorf("authorized_keys[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// PasswordStep returns the password to set and whether to set one at all.
func (c ContainerSpec) PasswordStep(s Settings) (string, bool) {
	p := s.DefaultPassword
	if c.Password != nil {
		p = *c.Password
	}
	return p.Value, !p.Disabled
}

// WheelEnabled reports whether the user should be added to the admin group.
func (c ContainerSpec) WheelEnabled() bool {
	return c.Wheel == nil || *c.Wheel
}

// VolumeName is the named volume mounted at Settings.HomeMount.
func (c ContainerSpec) VolumeName(s Settings) string {
	return s.VolumePrefix + c.Name
}

// HomeDir is the user's home directory inside the container.
func (c ContainerSpec) HomeDir(s Settings) string {
	return path.Join(s.HomeMount, c.User)
}

// Identity resolves the uid/gid the container's user gets.
func (c ContainerSpec) Identity() (identity.Identity, error) {
	return identity.Resolve(c.IP, c.UIDGID)
}

// Provisioning returns the user provisioning request for c.
func (c ContainerSpec) Provisioning(s Settings) (identity.Provisioning, error) {
	id, err := c.Identity()
	if err != nil {
		return identity.Provisioning{}, err
	}
	p := identity.Provisioning{
		User:           c.User,
		Identity:       id,
		Shell:          s.LoginShell,
		HomeDir:        c.HomeDir(s),
		AuthorizedKeys: c.AuthorizedKeys,
	}
	p.Password, p.SetPassword = c.PasswordStep(s)
	if c.WheelEnabled() {
		p.AdminGroup = s.AdminGroup
	}
	return p, nil
}
