// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/atelier-foundation/atelier/lib/launch"
)

// launchSpec is the user-authored launch description. The file is
// JSONC: comments and trailing commas are stripped before parsing.
// The password is deliberately not part of the spec.
type launchSpec struct {
	// Username the session runs as. Required.
	Username string `json:"username"`

	// Project the session is scoped to.
	Project string `json:"project"`

	// Executable is the session binary path. When empty, the launcher
	// falls back to its configured default session binary.
	Executable string `json:"executable"`

	// Args are the command-line arguments, not including the
	// executable.
	Args []string `json:"args"`

	// Environment is the session environment as an ordered object.
	Environment launch.EnvironmentList `json:"environment"`

	// StdInput is written to the session's stdin after launch.
	StdInput string `json:"stdInput"`

	// InheritStreams lets the session inherit the launcher's output
	// streams instead of capturing them.
	InheritStreams bool `json:"inheritStreams"`

	// Limits are the session's resource limits.
	Limits specLimits `json:"limits"`
}

type specLimits struct {
	Priority           int32              `json:"priority"`
	MemoryLimitBytes   uint64             `json:"memoryLimitBytes"`
	StackLimitBytes    uint64             `json:"stackLimitBytes"`
	UserProcessesLimit uint64             `json:"userProcessesLimit"`
	CPULimit           uint64             `json:"cpuLimit"`
	NiceLimit          uint64             `json:"niceLimit"`
	FilesLimit         uint64             `json:"filesLimit"`
	CPUAffinity        launch.CPUAffinity `json:"cpuAffinity"`
}

// loadSpec reads and parses a JSONC launch spec file.
func loadSpec(path string) (*launchSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSpec(data)
}

func parseSpec(data []byte) (*launchSpec, error) {
	var spec launchSpec
	if err := json.Unmarshal(jsonc.ToJSON(data), &spec); err != nil {
		return nil, fmt.Errorf("parsing launch spec: %w", err)
	}
	if spec.Username == "" {
		return nil, fmt.Errorf("launch spec: username is required")
	}
	return &spec, nil
}

// buildProfile turns a spec into a launch profile for the given
// session id. The session id doubles as the scope identifier, so a
// session's scope is traceable back to its launch.
func buildProfile(spec *launchSpec, sessionID string) *launch.Profile {
	streamBehavior := launch.StdStreamCapture
	if spec.InheritStreams {
		streamBehavior = launch.StdStreamInherit
	}

	return &launch.Profile{
		Context: launch.SessionContext{
			Username: spec.Username,
			Scope:    launch.ScopeFromProjectID(spec.Project, sessionID),
		},
		ExecutablePath: spec.Executable,
		Config: launch.ProcessConfig{
			Args:              spec.Args,
			Environment:       spec.Environment,
			StdInput:          spec.StdInput,
			StdStreamBehavior: streamBehavior,
			Limits: launch.ResourceLimits{
				Priority:           spec.Limits.Priority,
				MemoryLimitBytes:   launch.RLimit(spec.Limits.MemoryLimitBytes),
				StackLimitBytes:    launch.RLimit(spec.Limits.StackLimitBytes),
				UserProcessesLimit: launch.RLimit(spec.Limits.UserProcessesLimit),
				CPULimit:           launch.RLimit(spec.Limits.CPULimit),
				NiceLimit:          launch.RLimit(spec.Limits.NiceLimit),
				FilesLimit:         launch.RLimit(spec.Limits.FilesLimit),
				CPUAffinity:        spec.Limits.CPUAffinity,
			},
		},
	}
}
