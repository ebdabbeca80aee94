// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

type StandardsConfig struct {
	// DataDir: root of the local data cache (raw downloads, processed
	// output, upload markers)
	DataDir string `yaml:"data_dir"`

	// IngestorURL: base URL of the standards ingestor service
	IngestorURL string `yaml:"ingestor_url"`

	// CSP: Common Standards Project API settings
	CSP CSPConfig `yaml:"csp"`

	// Secrets: pointers to where secrets are stored like env vars
	Secrets SecretsConfig `yaml:"secrets"`
}

type CSPConfig struct {
	BaseURL           string `yaml:"base_url,omitempty"` // empty uses the public API
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	MaxRetries        int    `yaml:"max_retries"`
}

type SecretsConfig struct {
	UseEnv bool `yaml:"use_env"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() StandardsConfig {
	return StandardsConfig{
		DataDir:     "~/.aleutian/standards/data",
		IngestorURL: "http://localhost:12230",
		CSP: CSPConfig{
			RequestsPerMinute: 50,
			MaxRetries:        3,
		},
		Secrets: SecretsConfig{UseEnv: true},
	}
}

// ResolvedDataDir expands a leading ~ in DataDir to the user's home
// directory.
func (c StandardsConfig) ResolvedDataDir() string {
	dir := c.DataDir
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}
