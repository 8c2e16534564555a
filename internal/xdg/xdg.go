// Package xdg resolves XDG Base Directory paths for quarry. It falls back
// to the traditional dotfile locations when the XDG environment variables
// are unset and creates directories with private permissions.
package xdg

import (
	"os"
	"path/filepath"
)

// StateDir returns the XDG state directory for quarry, creating it with
// 0700 permissions if missing. Falls back to ~/.local/state/quarry when
// XDG_STATE_HOME is unset. The statement history lives here.
func StateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(base, "quarry")
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

// ConfigDir returns the XDG config directory for quarry, creating it with
// 0700 permissions if missing. Falls back to ~/.config/quarry when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, "quarry")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// HistoryPath returns the statement history file path inside StateDir.
func HistoryPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}
