// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launcher.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
paths:
  run: /run/atelier
  state: /var/lib/atelier
  archive: /var/lib/atelier/archive
session:
  executable_path: /usr/lib/atelier/session
  default_limits:
    priority: 10
    memory_limit_bytes: 2147483648
    files_limit: 1024
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Paths.Run != "/run/atelier" {
		t.Errorf("Paths.Run = %q, want /run/atelier", cfg.Paths.Run)
	}
	if cfg.Session.ExecutablePath != "/usr/lib/atelier/session" {
		t.Errorf("Session.ExecutablePath = %q", cfg.Session.ExecutablePath)
	}

	limits := cfg.Session.DefaultLimits.ResourceLimits()
	if limits.Priority != 10 {
		t.Errorf("Priority = %d, want 10", limits.Priority)
	}
	if limits.MemoryLimitBytes != 2147483648 {
		t.Errorf("MemoryLimitBytes = %d, want 2147483648", limits.MemoryLimitBytes)
	}
	if limits.FilesLimit != 1024 {
		t.Errorf("FilesLimit = %d, want 1024", limits.FilesLimit)
	}
}

func TestLoadFile_DerivesSocketPaths(t *testing.T) {
	path := writeConfigFile(t, `
paths:
  run: /run/atelier
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Launcher.SessionSocket != "/run/atelier/session.sock" {
		t.Errorf("SessionSocket = %q, want /run/atelier/session.sock", cfg.Launcher.SessionSocket)
	}
	if cfg.Launcher.CredentialSocket != "/run/atelier/credential.sock" {
		t.Errorf("CredentialSocket = %q, want /run/atelier/credential.sock", cfg.Launcher.CredentialSocket)
	}
}

func TestLoadFile_ExplicitSocketsWin(t *testing.T) {
	path := writeConfigFile(t, `
launcher:
  session_socket: /tmp/s.sock
  credential_socket: /tmp/c.sock
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Launcher.SessionSocket != "/tmp/s.sock" {
		t.Errorf("SessionSocket = %q, want /tmp/s.sock", cfg.Launcher.SessionSocket)
	}
	if cfg.Launcher.CredentialSocket != "/tmp/c.sock" {
		t.Errorf("CredentialSocket = %q, want /tmp/c.sock", cfg.Launcher.CredentialSocket)
	}
}

func TestLoadFile_ExpandsHome(t *testing.T) {
	path := writeConfigFile(t, `
paths:
  run: ${HOME}/atelier/run
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "atelier", "run")
	if cfg.Paths.Run != want {
		t.Errorf("Paths.Run = %q, want %q", cfg.Paths.Run, want)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile() on missing file succeeded, want error")
	}
}

func TestDefault_PendingTimeout(t *testing.T) {
	if got := Default().Launcher.PendingLaunchTimeout; got != "30s" {
		t.Errorf("PendingLaunchTimeout = %q, want 30s", got)
	}
}
