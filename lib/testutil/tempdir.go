// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"testing"
)

// SocketDir creates a temporary directory directly under /tmp,
// suitable for Unix domain sockets. Unix socket paths are limited to
// 108 bytes (sun_path in sockaddr_un), and test runners often set the
// default temp dir to deeply nested paths that blow past that limit,
// making t.TempDir() unusable for socket files. The directory is
// removed when the test completes.
func SocketDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "atelier-test-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
