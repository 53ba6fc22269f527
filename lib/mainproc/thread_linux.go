// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package mainproc

import "golang.org/x/sys/unix"

// forkSupported reports whether this platform has fork-without-exec
// semantics the tracker must account for.
const forkSupported = true

// currentThreadID returns the kernel thread id of the calling thread.
// Only meaningful while the calling goroutine is locked to its OS
// thread.
func currentThreadID() int {
	return unix.Gettid()
}
