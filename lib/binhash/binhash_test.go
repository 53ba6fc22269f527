// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	digest, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}

	formatted := FormatDigest(digest)
	if len(formatted) != 64 {
		t.Errorf("FormatDigest() length = %d, want 64", len(formatted))
	}

	parsed, err := ParseDigest(formatted)
	if err != nil {
		t.Fatalf("ParseDigest() error: %v", err)
	}
	if parsed != digest {
		t.Error("ParseDigest(FormatDigest(d)) != d")
	}
}

func TestHashFile_Missing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("HashFile() on missing file succeeded, want error")
	}
}

func TestHashFile_ContentSensitive(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	os.WriteFile(first, []byte("one"), 0o644)
	os.WriteFile(second, []byte("two"), 0o644)

	firstDigest, err := HashFile(first)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	secondDigest, err := HashFile(second)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if firstDigest == secondDigest {
		t.Error("different contents produced identical digests")
	}
}

func TestParseDigest_Invalid(t *testing.T) {
	for _, input := range []string{"", "zz", "abcd"} {
		if _, err := ParseDigest(input); err == nil {
			t.Errorf("ParseDigest(%q) succeeded, want error", input)
		}
	}
}
