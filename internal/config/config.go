// Package config handles civget path and credential configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds common paths used by civget.
type Paths struct {
	Home   string
	Config string
	Logs   string
	Log    string
}

// GetPaths returns the paths for the current user.
func GetPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	civgetHome := filepath.Join(home, ".civget")
	logsDir := filepath.Join(civgetHome, "logs")
	return &Paths{
		Home:   civgetHome,
		Config: filepath.Join(civgetHome, "config.yaml"),
		Logs:   logsDir,
		Log:    filepath.Join(logsDir, "civget.log"),
	}, nil
}

// EnsureDirectories creates the required directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.Home, p.Logs}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ResolveDir resolves a destination directory with tilde expansion and
// relative path resolution against the working directory.
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory cannot be empty")
	}

	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home dir: %w", err)
		}
		return filepath.Join(home, dir[2:]), nil
	}

	if filepath.IsAbs(dir) {
		return dir, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
