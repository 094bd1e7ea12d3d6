// Package options defines flag structs for the podman commands devctr runs.
//
// Fields carry a `flag` struct tag naming the CLI flag. ToArgs turns a struct
// value into an argv slice suitable for exec.Command.
package options

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// RunContainer are the flags for `podman run`.
type RunContainer struct {
	ManagementOptions
	ProcessOptions
}

// ExecContainer are the flags for `podman exec`.
type ExecContainer struct {
	ProcessOptions
	Detach bool `flag:"--detach"` // Run the exec session in detached mode
}

// InspectContainer are the flags for `podman inspect`.
type InspectContainer struct {
	Format string `flag:"--format"` // Go template applied to each result
	Type   string `flag:"--type"`   // Restrict the object type (container, image, ...)
}

// ListContainers are the flags for `podman ps`.
type ListContainers struct {
	All    bool     `flag:"--all"`    // Show stopped containers too
	Format string   `flag:"--format"` // Output format (json, or a Go template)
	Filter []string `flag:"--filter"` // Filter output (e.g. label=spec-hash)
}

type ManagementOptions struct {
	Detach     bool              `flag:"--detach"`     // Run the container in the background and print its ID
	Name       string            `flag:"--name"`       // Assign a name to the container
	Network    string            `flag:"--network"`    // Connect the container to a network
	IP         string            `flag:"--ip"`         // Static IPv4 address on the attached network
	Hostname   string            `flag:"--hostname"`   // Container host name
	Privileged bool              `flag:"--privileged"` // Give extended privileges to the container
	Volume     []string          `flag:"--volume"`     // Bind mount a volume (format: source:target[:options])
	Label      map[string]string `flag:"--label"`      // Set metadata on the container (key=value)
	Remove     bool              `flag:"--rm"`         // Remove the container when it exits
}

type ProcessOptions struct {
	Env         map[string]string `flag:"--env"`         // Set environment variables (key=value)
	Interactive bool              `flag:"--interactive"` // Keep STDIN open even if not attached
	TTY         bool              `flag:"--tty"`         // Allocate a pseudo-TTY
	User        string            `flag:"--user"`        // Username or UID (format: name|uid[:gid])
	WorkDir     string            `flag:"--workdir"`     // Working directory inside the container
}

// ToArgs creates an array of strings that you can pass to exec.Command(...) as CLI args.
// Embedded structs are flattened in declaration order. Zero values are skipped unless the
// tag carries ",keepZero". Slices repeat the flag per element; maps repeat the flag once
// per key, in sorted key order.
func ToArgs(s any) []string {
	v := reflect.ValueOf(s)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return appendArgs(nil, v)
}

func appendArgs(ret []string, sv reflect.Value) []string {
	st := sv.Type()
	for i := range st.NumField() {
		field := st.Field(i)
		fv := sv.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			ret = appendArgs(ret, fv)
			continue
		}
		flagTag, ok := field.Tag.Lookup("flag")
		if !ok {
			continue
		}
		flagParts := strings.Split(flagTag, ",")
		flagName := flagParts[0]
		keepZero := len(flagParts) > 1 && strings.EqualFold(flagParts[1], "keepZero")
		if !keepZero && fv.IsZero() {
			continue
		}

		switch field.Type.Kind() {
		case reflect.Bool:
			if fv.Bool() {
				ret = append(ret, flagName)
			}
		case reflect.Slice:
			for j := range fv.Len() {
				ret = append(ret, flagName, fmt.Sprintf("%v", fv.Index(j).Interface()))
			}
		case reflect.Map:
			m, ok := fv.Interface().(map[string]string)
			if !ok {
				continue
			}
			for _, k := range slices.Sorted(maps.Keys(m)) {
				ret = append(ret, flagName, k+"="+m[k])
			}
		default:
			ret = append(ret, flagName, fmt.Sprintf("%v", fv.Interface()))
		}
	}
	return ret
}
