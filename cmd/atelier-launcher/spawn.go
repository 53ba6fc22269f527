// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/atelier-foundation/atelier/lib/launch"
)

// Spawner turns a decrypted launch profile into a running session
// process. The profile handed to Spawn is consumed read-only and is in
// the plaintext credential state.
type Spawner interface {
	Spawn(sessionID string, profile *launch.Profile) (*SpawnedSession, error)
}

// SpawnedSession describes a session the spawner started.
type SpawnedSession struct {
	// PID of the session process.
	PID int

	// OutputPath is the captured-output file, empty when the session
	// inherited the launcher's streams.
	OutputPath string

	// Done delivers the process's exit result exactly once.
	Done <-chan error
}

// execSpawner is the os/exec-backed spawner. Captured output goes to
// per-session files under stateDir; resource limits are applied to the
// child after start via prlimit(2) and the scheduling syscalls (see
// limits.go).
type execSpawner struct {
	stateDir string
	logger   *slog.Logger
}

func newExecSpawner(stateDir string, logger *slog.Logger) *execSpawner {
	return &execSpawner{stateDir: stateDir, logger: logger}
}

func (e *execSpawner) Spawn(sessionID string, profile *launch.Profile) (*SpawnedSession, error) {
	cmd := exec.Command(profile.ExecutablePath, profile.Config.Args...)

	environment := make([]string, 0, len(profile.Config.Environment))
	for _, variable := range profile.Config.Environment {
		environment = append(environment, variable.Name+"="+variable.Value)
	}
	cmd.Env = environment

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}

	var outputPath string
	var outputFile *os.File
	switch profile.Config.StdStreamBehavior {
	case launch.StdStreamInherit:
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	default:
		outputPath = filepath.Join(e.stateDir, "session-"+sessionID+".log")
		outputFile, err = os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return nil, fmt.Errorf("creating output file: %w", err)
		}
		cmd.Stdout = outputFile
		cmd.Stderr = outputFile
	}

	if err := cmd.Start(); err != nil {
		if outputFile != nil {
			outputFile.Close()
		}
		return nil, fmt.Errorf("starting %s: %w", profile.ExecutablePath, err)
	}

	applyResourceLimits(cmd.Process.Pid, profile.Config.Limits, e.logger)

	// The password goes to the session as the first line of stdin,
	// ahead of the configured input payload. Never argv, never the
	// environment.
	go func() {
		defer stdin.Close()
		if _, err := io.WriteString(stdin, profile.Password+"\n"); err != nil {
			e.logger.Error("writing session password to stdin", "session_id", sessionID, "error", err)
			return
		}
		if profile.Config.StdInput != "" {
			if _, err := io.WriteString(stdin, profile.Config.StdInput); err != nil {
				e.logger.Error("writing session stdin payload", "session_id", sessionID, "error", err)
			}
		}
	}()

	done := make(chan error, 1)
	go func() {
		waitErr := cmd.Wait()
		if outputFile != nil {
			outputFile.Close()
		}
		done <- waitErr
	}()

	return &SpawnedSession{
		PID:        cmd.Process.Pid,
		OutputPath: outputPath,
		Done:       done,
	}, nil
}
