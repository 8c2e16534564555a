// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores shell defaults in the XDG config dir.
// Only non-secret settings are kept here; connection credentials go to the
// OS keyring. Command-line flags override anything loaded from the file.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"quarry/cli/internal/xdg"
)

// Config holds the persisted shell defaults.
type Config struct {
	Format      string `json:"format"`
	Timing      bool   `json:"timing"`
	Null        string `json:"null,omitempty"`
	MaxColWidth int    `json:"max_col_width,omitempty"`
	Lookahead   int    `json:"lookahead,omitempty"`
	BatchSize   int    `json:"batch_size,omitempty"`
	Workers     int    `json:"workers,omitempty"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file returns defaults.
func Load() (Config, error) {
	c := Config{Format: "table"}
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.Format == "" {
		c.Format = "table"
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
