// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/atelier-foundation/atelier/lib/launch"
)

const sampleSpec = `{
	// who the session runs as
	"username": "alice",
	"project": "proj1",
	"executable": "/usr/bin/session",
	"args": ["--verbose", "--port=9000"],
	"environment": {
		"HOME": "/home/alice",
		"LANG": "en_US.UTF-8",
	},
	"stdInput": "init\n",
	"inheritStreams": true,
	"limits": {
		"priority": 5,
		"memoryLimitBytes": 1073741824,
		"cpuAffinity": [true, false, true, false],
	},
}`

func TestParseSpec(t *testing.T) {
	spec, err := parseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatalf("parseSpec: %v", err)
	}

	if spec.Username != "alice" {
		t.Errorf("username = %q", spec.Username)
	}
	if spec.Executable != "/usr/bin/session" {
		t.Errorf("executable = %q", spec.Executable)
	}
	if len(spec.Args) != 2 || spec.Args[1] != "--port=9000" {
		t.Errorf("args = %v", spec.Args)
	}
	if !spec.InheritStreams {
		t.Error("inheritStreams not parsed")
	}
	if spec.Limits.Priority != 5 {
		t.Errorf("priority = %d", spec.Limits.Priority)
	}
	if spec.Limits.MemoryLimitBytes != 1<<30 {
		t.Errorf("memoryLimitBytes = %d", spec.Limits.MemoryLimitBytes)
	}
	if len(spec.Limits.CPUAffinity) != 4 || !spec.Limits.CPUAffinity[2] {
		t.Errorf("cpuAffinity = %v", spec.Limits.CPUAffinity)
	}
}

func TestParseSpec_EnvironmentOrder(t *testing.T) {
	spec, err := parseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatalf("parseSpec: %v", err)
	}

	want := launch.EnvironmentList{
		{Name: "HOME", Value: "/home/alice"},
		{Name: "LANG", Value: "en_US.UTF-8"},
	}
	if len(spec.Environment) != len(want) {
		t.Fatalf("environment = %v", spec.Environment)
	}
	for i, variable := range want {
		if spec.Environment[i] != variable {
			t.Errorf("environment[%d] = %v, want %v", i, spec.Environment[i], variable)
		}
	}
}

func TestParseSpec_UsernameRequired(t *testing.T) {
	if _, err := parseSpec([]byte(`{"executable": "/usr/bin/session"}`)); err == nil {
		t.Error("parseSpec accepted a spec with no username")
	}
}

func TestParseSpec_ExecutableOptional(t *testing.T) {
	// The launcher substitutes its configured default binary.
	spec, err := parseSpec([]byte(`{"username": "alice"}`))
	if err != nil {
		t.Fatalf("parseSpec: %v", err)
	}
	if spec.Executable != "" {
		t.Errorf("executable = %q, want empty", spec.Executable)
	}
}

func TestParseSpec_AffinityMustBeBoolean(t *testing.T) {
	body := `{
		"username": "alice",
		"executable": "/usr/bin/session",
		"limits": {"cpuAffinity": [true, 1]},
	}`
	_, err := parseSpec([]byte(body))
	if err == nil {
		t.Fatal("parseSpec accepted a numeric affinity element")
	}
	if !errors.Is(err, launch.ErrAffinityElementType) {
		t.Errorf("error %v does not wrap ErrAffinityElementType", err)
	}
}

func TestBuildProfile(t *testing.T) {
	spec, err := parseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatalf("parseSpec: %v", err)
	}

	profile := buildProfile(spec, "sess-42")

	if profile.Context.Username != "alice" {
		t.Errorf("username = %q", profile.Context.Username)
	}
	if got := profile.Context.Scope.Project(); got != "proj1" {
		t.Errorf("project = %q", got)
	}
	if got := profile.Context.Scope.ID(); got != "sess-42" {
		t.Errorf("scope id = %q", got)
	}
	if profile.Config.StdStreamBehavior != launch.StdStreamInherit {
		t.Errorf("stream behavior = %v", profile.Config.StdStreamBehavior)
	}
	if profile.Config.Limits.MemoryLimitBytes != launch.RLimit(1<<30) {
		t.Errorf("memory limit = %d", profile.Config.Limits.MemoryLimitBytes)
	}
	if profile.Password != "" || profile.EncryptionKey != "" {
		t.Error("fresh profile carries credential material")
	}
}

func TestNewSessionID(t *testing.T) {
	first, err := newSessionID()
	if err != nil {
		t.Fatal(err)
	}
	second, err := newSessionID()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 16 || strings.ToLower(first) != first {
		t.Errorf("session id %q is not 16 lowercase hex chars", first)
	}
	if first == second {
		t.Error("consecutive session ids collide")
	}
}
