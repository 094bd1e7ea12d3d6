package identity

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrInvalidUserName is returned for names useradd would reject or mangle.
	ErrInvalidUserName = errors.New("invalid user name")

	// ErrInvalidScriptValue is returned when a value can't be safely placed in the script.
	ErrInvalidScriptValue = errors.New("invalid provisioning value")

	userNameRE = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

// ValidateUserName checks name against the portable useradd/groupadd name rules.
func ValidateUserName(name string) error {
	if !userNameRE.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidUserName, name, userNameRE)
	}
	return nil
}

// Provisioning describes the login user to create inside a container.
type Provisioning struct {
	User     string
	Identity Identity
	Shell    string
	HomeDir  string

	// Password is applied with chpasswd when SetPassword is true.
	Password    string
	SetPassword bool

	// AdminGroup, when non-empty, is added to the user's supplementary groups.
	AdminGroup string

	// AuthorizedKeys replace the user's ~/.ssh/authorized_keys when non-empty.
	AuthorizedKeys []string
}

// Script returns a bash script that ensures the user exists. The script runs under
// `set -e`, so the first failing step fails the whole script.
//
// Group and user creation are guarded and leave existing accounts alone. A group
// that already carries the user's name but another gid is moved to the derived gid.
// The user's home is HomeDir. The password, admin group and authorized_keys steps
// are not guarded and re-apply every time the script runs.
func (p Provisioning) Script() (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	q := &quoter{}
	user := q.quote(p.User)
	uid := strconv.Itoa(p.Identity.UID)
	gid := strconv.Itoa(p.Identity.GID)

	lines := []string{
		"set -e",
		// A group already named after the user takes the derived gid.
		fmt.Sprintf("getent group %s >/dev/null || if getent group %s >/dev/null; then groupmod -g %s %s; else groupadd -g %s %s; fi",
			gid, user, gid, user, gid, user),
		fmt.Sprintf("id -u %s >/dev/null 2>&1 || useradd -m -d %s -u %s -g %s -s %s %s", user, q.quote(p.HomeDir), uid, gid, q.quote(p.Shell), user),
	}
	if p.SetPassword {
		lines = append(lines, fmt.Sprintf("printf '%%s\\n' %s | chpasswd", q.quote(p.User+":"+p.Password)))
	}
	if p.AdminGroup != "" {
		lines = append(lines, fmt.Sprintf("usermod -aG %s %s", q.quote(p.AdminGroup), user))
	}
	if len(p.AuthorizedKeys) > 0 {
		sshDir := path.Join(p.HomeDir, ".ssh")
		keysFile := path.Join(sshDir, "authorized_keys")
		keys := make([]string, 0, len(p.AuthorizedKeys))
		for _, k := range p.AuthorizedKeys {
			keys = append(keys, q.quote(k))
		}
		lines = append(lines,
			fmt.Sprintf("install -d -m 700 -o %s -g %s %s", uid, gid, q.quote(sshDir)),
			fmt.Sprintf("printf '%%s\\n' %s >%s", strings.Join(keys, " "), q.quote(keysFile)),
			fmt.Sprintf("chown %s:%s %s", uid, gid, q.quote(keysFile)),
			fmt.Sprintf("chmod 600 %s", q.quote(keysFile)),
		)
	}
	if q.err != nil {
		return "", q.err
	}

	script := strings.Join(lines, "\n") + "\n"
	if _, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(script), "provision"); err != nil {
		return "", fmt.Errorf("provisioning script syntax error: %w", err)
	}
	return script, nil
}

func (p Provisioning) validate() error {
	if err := ValidateUserName(p.User); err != nil {
		return err
	}
	if p.AdminGroup != "" {
		if err := ValidateUserName(p.AdminGroup); err != nil {
			return fmt.Errorf("admin group: %w", err)
		}
	}
	if !path.IsAbs(p.Shell) {
		return fmt.Errorf("%w: login shell %q must be an absolute path", ErrInvalidScriptValue, p.Shell)
	}
	if !path.IsAbs(p.HomeDir) {
		return fmt.Errorf("%w: home directory %q must be an absolute path", ErrInvalidScriptValue, p.HomeDir)
	}
	if p.Identity.UID <= 0 || p.Identity.GID <= 0 {
		return fmt.Errorf("%w: refusing to provision %q as %s", ErrInvalidScriptValue, p.User, p.Identity)
	}
	// chpasswd reads one user:password pair per line.
	if strings.ContainsAny(p.Password, "\n\r") {
		return fmt.Errorf("%w: password must be a single line", ErrInvalidScriptValue)
	}
	for _, k := range p.AuthorizedKeys {
		if strings.ContainsAny(k, "\n\r") {
			return fmt.Errorf("%w: authorized key must be a single line", ErrInvalidScriptValue)
		}
	}
	return nil
}

// quoter quotes words for bash and remembers the first failure.
type quoter struct {
	err error
}

func (q *quoter) quote(s string) string {
	if q.err != nil {
		return ""
	}
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		q.err = fmt.Errorf("%w: %w", ErrInvalidScriptValue, err)
		return ""
	}
	return quoted
}
