package config

import (
	"fmt"
	"os"
	"strings"
)

const starterTemplate = `# devctr containers file.
#
# Every entry needs a unique name and a static IPv4 address on the network below.
# The user's uid/gid is 11000 + the last octet of ip unless uid_gid is set.
settings:
  network: %s
  default_image: %s

containers:
  - name: %s
    ip: %s
    user: %s
    # hostname: defaults to name
    # password: false        # skip setting an initial password
    # wheel: false           # don't add the user to the admin group
    # authorized_keys:
    #   - ssh-ed25519 AAAA... you@laptop
`

// Starter renders a starter containers file with a single entry.
func Starter(name, ip, user string) string {
	return fmt.Sprintf(starterTemplate, DefaultNetwork, DefaultImage, name, ip, user)
}

// WriteStarter writes Starter(...) to path, refusing to clobber an existing file
// unless overwrite is set. The rendered document is validated before it is written.
func WriteStarter(path, name, ip, user string, overwrite bool) error {
	content := Starter(name, ip, user)
	if _, err := Parse([]byte(content)); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(strings.TrimLeft(content, "\n")), 0o644)
}
