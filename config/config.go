// Package config loads the declarative container list devctr reconciles and
// computes each entry's fingerprint.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every error Load returns.
var ErrInvalidConfig = errors.New("invalid configuration")

// File is the top-level document of a containers file.
type File struct {
	Settings   Settings        `yaml:"settings,omitempty"`
	Containers []ContainerSpec `yaml:"containers"`
}

// Load reads, resolves and validates the containers file at path. The returned
// specs have their defaults filled in and are ready to fingerprint.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes, resolves and validates a containers document.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	f.Settings = f.Settings.WithDefaults()
	for i := range f.Containers {
		f.Containers[i] = f.Containers[i].Resolve(f.Settings)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &f, nil
}

// Validate checks the settings, every container and the uniqueness of names and addresses.
func (f *File) Validate() error {
	var errs []error
	if !path.IsAbs(f.Settings.HomeMount) {
		errs = append(errs, fmt.Errorf("settings.home_mount %q must be an absolute path", f.Settings.HomeMount))
	}
	names := map[string]int{}
	ips := map[string]int{}
	for i, c := range f.Containers {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("containers[%d] (%s): %w", i, c.Name, err))
		}
		if j, ok := names[c.Name]; ok && c.Name != "" {
			errs = append(errs, fmt.Errorf("containers[%d]: name %q already used by containers[%d]", i, c.Name, j))
		}
		names[c.Name] = i
		if j, ok := ips[c.IP]; ok && c.IP != "" {
			errs = append(errs, fmt.Errorf("containers[%d] (%s): ip %s already used by containers[%d]", i, c.Name, c.IP, j))
		}
		ips[c.IP] = i
	}
	return errors.Join(errs...)
}

// Lookup returns the container named name.
func (f *File) Lookup(name string) (ContainerSpec, bool) {
	for _, c := range f.Containers {
		if c.Name == name {
			return c, true
		}
	}
	return ContainerSpec{}, false
}
