// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the Atelier
// launcher.
//
// Configuration is loaded from a single YAML file. Environment
// variables never override config values — the file is the single
// source of truth, which keeps deployed configuration deterministic
// and auditable. The only expansion performed is ${HOME} and similar
// path variables for portability.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/atelier-foundation/atelier/lib/launch"
)

// Config is the launcher configuration.
type Config struct {
	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Launcher configures the launcher daemon itself.
	Launcher LauncherConfig `yaml:"launcher"`

	// Session configures defaults applied to session launches.
	Session SessionConfig `yaml:"session"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Run is the runtime directory for sockets and ephemeral state.
	Run string `yaml:"run"`

	// State is where persistent launcher state is stored.
	State string `yaml:"state"`

	// Archive is where session output is archived after exit.
	Archive string `yaml:"archive"`
}

// LauncherConfig configures the launcher daemon.
type LauncherConfig struct {
	// SessionSocket is the Unix socket for launch requests and
	// control. Derived from Paths.Run when empty.
	SessionSocket string `yaml:"session_socket"`

	// CredentialSocket is the Unix socket for credential ciphertext
	// delivery. Kept separate from SessionSocket on purpose: the
	// ciphertext must not share the profile's transport. Derived
	// from Paths.Run when empty.
	CredentialSocket string `yaml:"credential_socket"`

	// PendingLaunchTimeout is how long a launch may wait for its
	// credential half (or vice versa) before it is discarded, as a
	// Go duration string. Default: 30s.
	PendingLaunchTimeout string `yaml:"pending_launch_timeout"`
}

// SessionConfig configures session launch defaults.
type SessionConfig struct {
	// ExecutablePath is the default session binary, used when a
	// launch spec does not name one.
	ExecutablePath string `yaml:"executable_path"`

	// DefaultLimits are the resource limits applied when a launch
	// spec does not set its own.
	DefaultLimits LimitsConfig `yaml:"default_limits"`
}

// LimitsConfig is the YAML form of session resource limits. Zero
// means "leave unset" for every field.
type LimitsConfig struct {
	Priority           int32  `yaml:"priority"`
	MemoryLimitBytes   uint64 `yaml:"memory_limit_bytes"`
	StackLimitBytes    uint64 `yaml:"stack_limit_bytes"`
	UserProcessesLimit uint64 `yaml:"user_processes_limit"`
	CPULimit           uint64 `yaml:"cpu_limit"`
	NiceLimit          uint64 `yaml:"nice_limit"`
	FilesLimit         uint64 `yaml:"files_limit"`
}

// ResourceLimits converts the YAML limits into the profile form.
func (l LimitsConfig) ResourceLimits() launch.ResourceLimits {
	return launch.ResourceLimits{
		Priority:           l.Priority,
		MemoryLimitBytes:   launch.RLimit(l.MemoryLimitBytes),
		StackLimitBytes:    launch.RLimit(l.StackLimitBytes),
		UserProcessesLimit: launch.RLimit(l.UserProcessesLimit),
		CPULimit:           launch.RLimit(l.CPULimit),
		NiceLimit:          launch.RLimit(l.NiceLimit),
		FilesLimit:         launch.RLimit(l.FilesLimit),
	}
}

// Default returns the default configuration, used as the base before
// a config file is merged over it.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "atelier")

	return &Config{
		Paths: PathsConfig{
			Run:     filepath.Join(defaultRoot, "run"),
			State:   filepath.Join(defaultRoot, "state"),
			Archive: filepath.Join(defaultRoot, "archive"),
		},
		Launcher: LauncherConfig{
			PendingLaunchTimeout: "30s",
		},
		Session: SessionConfig{
			ExecutablePath: "/opt/atelier/bin/session",
		},
	}
}

// LoadFile loads configuration from path, merging the file over the
// defaults and deriving any socket paths left empty.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	cfg.deriveSocketPaths()

	return cfg, nil
}

// deriveSocketPaths fills in socket paths from the run directory when
// the config file left them empty.
func (c *Config) deriveSocketPaths() {
	if c.Launcher.SessionSocket == "" {
		c.Launcher.SessionSocket = filepath.Join(c.Paths.Run, "session.sock")
	}
	if c.Launcher.CredentialSocket == "" {
		c.Launcher.CredentialSocket = filepath.Join(c.Paths.Run, "credential.sock")
	}
}

// expandVariables expands ${HOME} and $HOME in path fields.
func (c *Config) expandVariables() {
	expand := func(path *string) {
		*path = os.Expand(*path, func(name string) string {
			if name == "HOME" {
				home, _ := os.UserHomeDir()
				return home
			}
			// Unknown variables are left untouched rather than
			// silently emptied.
			return "${" + name + "}"
		})
	}
	expand(&c.Paths.Run)
	expand(&c.Paths.State)
	expand(&c.Paths.Archive)
	expand(&c.Launcher.SessionSocket)
	expand(&c.Launcher.CredentialSocket)
	expand(&c.Session.ExecutablePath)
}
