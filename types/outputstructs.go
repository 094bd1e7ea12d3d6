// package types defines structs for unmashaling the output from various `podman` commands.
package types

import "time"

// Container is one entry of `podman ps --all --format json`.
type Container struct {
	ID        string            `json:"Id"`
	Names     []string          `json:"Names"`
	Image     string            `json:"Image"`
	State     string            `json:"State"`
	Status    string            `json:"Status"`
	Labels    map[string]string `json:"Labels"`
	Networks  []string          `json:"Networks"`
	Mounts    []string          `json:"Mounts"`
	CreatedAt string            `json:"CreatedAt"`
	Created   int64             `json:"Created"`
	ExitCode  int               `json:"ExitCode"`
}

// Name returns the primary name of the container.
func (c Container) Name() string {
	if len(c.Names) == 0 {
		return c.ID
	}
	return c.Names[0]
}

// CreatedTime returns the creation time reported by podman.
func (c Container) CreatedTime() time.Time {
	return time.Unix(c.Created, 0)
}

// Version is the subset of `podman version --format json` that devctr reads.
type Version struct {
	Client VersionInfo `json:"Client"`
	Server VersionInfo `json:"Server"`
}

type VersionInfo struct {
	APIVersion string `json:"APIVersion"`
	Version    string `json:"Version"`
	GoVersion  string `json:"GoVersion"`
	OsArch     string `json:"OsArch"`
}
