// Package sshconf maintains an ssh_config file with one Host block per managed
// container, and the Include line that makes ssh read it.
package sshconf

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// Entry is one Host block.
type Entry struct {
	Alias    string
	HostName string
	User     string
	Port     string
}

// DefaultPath is where devctr keeps its generated ssh_config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "devctr", "ssh_config"), nil
}

// UserConfigPath is the user's own ssh client configuration.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh", "config"), nil
}

// Render returns the ssh_config text for entries, in order.
func Render(entries []Entry) ([]byte, error) {
	cfg := &ssh_config.Config{}
	for _, e := range entries {
		pat, err := ssh_config.NewPattern(e.Alias)
		if err != nil {
			return nil, fmt.Errorf("bad host alias %q: %w", e.Alias, err)
		}
		nodes := []ssh_config.Node{
			&ssh_config.KV{Key: "HostName", Value: e.HostName},
		}
		if e.User != "" {
			nodes = append(nodes, &ssh_config.KV{Key: "User", Value: e.User})
		}
		if e.Port != "" {
			nodes = append(nodes, &ssh_config.KV{Key: "Port", Value: e.Port})
		}
		cfg.Hosts = append(cfg.Hosts, &ssh_config.Host{
			Patterns: []*ssh_config.Pattern{pat},
			Nodes:    nodes,
		})
	}
	out, err := cfg.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal ssh_config: %w", err)
	}
	return append([]byte("# Generated by devctr. Changes will be overwritten.\n"), out...), nil
}

// Write renders entries and safely replaces the file at path with the result.
func Write(fsys FileSystem, path string, entries []Entry) error {
	data, err := Render(entries)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("couldn't create %s: %w", filepath.Dir(path), err)
	}
	if err := fsys.SafeWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("couldn't safely write ssh_config: %w", err)
	}
	return nil
}

// IncludeStatus says what EnsureInclude found or did.
type IncludeStatus int

const (
	IncludePresent IncludeStatus = iota
	IncludeAdded
	// IncludeMisplaced means the Include exists but comes after a Host or Match
	// line, where ssh only applies it to that block.
	IncludeMisplaced
)

// EnsureInclude makes sure the ssh config at userConfig includes includePath,
// adding the line at the top of the file if it is missing.
func EnsureInclude(ctx context.Context, fsys FileSystem, userConfig, includePath string) (IncludeStatus, error) {
	includeLine := "Include " + includePath
	existing, err := fsys.ReadFile(userConfig)
	if err != nil {
		if !os.IsNotExist(err) {
			return IncludePresent, fmt.Errorf("cannot open SSH config file %s: %w", userConfig, err)
		}
		if err := fsys.MkdirAll(filepath.Dir(userConfig), 0o700); err != nil {
			return IncludePresent, err
		}
		return IncludeAdded, fsys.SafeWriteFile(userConfig, []byte(includeLine+"\n"), 0o600)
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(existing))
	if err != nil {
		return IncludePresent, fmt.Errorf("couldn't decode %s: %w", userConfig, err)
	}

	// Decode puts everything before the first Host or Match line in Hosts[0].
	var includePos *ssh_config.Position
	misplaced := false
	for i, host := range cfg.Hosts {
		for _, node := range host.Nodes {
			inc, ok := node.(*ssh_config.Include)
			if !ok || strings.TrimSpace(inc.String()) != includeLine {
				continue
			}
			if includePos == nil {
				pos := inc.Pos()
				includePos = &pos
				misplaced = i > 0
			}
		}
	}
	slog.InfoContext(ctx, "sshconf.EnsureInclude", "userConfig", userConfig, "includePos", includePos)

	if includePos == nil {
		data := append([]byte(includeLine+"\n"), existing...)
		if err := fsys.SafeWriteFile(userConfig, data, 0o600); err != nil {
			return IncludePresent, fmt.Errorf("couldn't safely write %s: %w", userConfig, err)
		}
		return IncludeAdded, nil
	}
	if misplaced {
		return IncludeMisplaced, nil
	}
	return IncludePresent, nil
}

// FileSystem is the subset of file operations sshconf needs.
type FileSystem interface {
	MkdirAll(name string, perm fs.FileMode) error
	ReadFile(name string) ([]byte, error)
	SafeWriteFile(name string, data []byte, perm fs.FileMode) error
}

// RealFileSystem is the OS-backed FileSystem.
type RealFileSystem struct{}

func (RealFileSystem) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(name, perm)
}

func (RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// SafeWriteFile writes data to a temporary file in the same directory, syncs it, moves
// any existing file to name+".bak", and renames the temporary file into place.
func (RealFileSystem) SafeWriteFile(name string, data []byte, perm fs.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("couldn't create temporary file: %w", err)
	}
	tmpFilename := tmpFile.Name()
	defer os.Remove(tmpFilename)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("couldn't write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("couldn't sync temporary file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("couldn't close temporary file: %w", err)
	}

	if _, err := os.Stat(name); err == nil {
		backupName := name + ".bak"
		_ = os.Remove(backupName)
		if err := os.Rename(name, backupName); err != nil {
			return fmt.Errorf("couldn't create backup file: %w", err)
		}
	}
	if err := os.Rename(tmpFilename, name); err != nil {
		return fmt.Errorf("couldn't rename temporary file to target: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		return fmt.Errorf("couldn't set permissions on file: %w", err)
	}
	return nil
}
