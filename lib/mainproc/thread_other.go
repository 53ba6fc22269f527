// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package mainproc

// forkSupported is false on platforms without fork-without-exec
// semantics: the fork hooks are inert and WasForked is always false.
const forkSupported = false

// currentThreadID returns a fixed identity on platforms without a
// usable gettid. Every thread compares equal to the recorded main
// thread, so IsMainThread degrades to always-true rather than
// producing spurious mismatch diagnostics.
func currentThreadID() int {
	return 0
}
