// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package mainproc tracks process-wide state a multi-threaded
// supervisor needs to stay correct across fork: which OS thread is the
// main thread, and whether the current process image is a
// fork-without-exec child.
//
// A fork that does not immediately exec inherits the parent's memory
// and open state with only the forking thread still running. Code that
// must not run in such a child (anything touching shared interpreter
// or library state) checks [Tracker.WasForked]; code restricted to the
// main thread checks [Tracker.IsMainThread].
//
// One [Tracker] is created at supervisor startup and passed to every
// component that needs these queries — the state is process-wide by
// nature, but it lives on an explicit object rather than in package
// globals. [Tracker.Init] must run on the main goroutine before any
// other goroutine is spawned; it locks that goroutine to its OS thread
// so the recorded thread identity stays valid.
//
// The fork hooks ([Tracker.PrepareFork], [Tracker.AtForkParent],
// [Tracker.AtForkChild]) are called by whatever code performs the
// fork, in the same positions pthread_atfork handlers would run.
// Thread identity comes from gettid(2); on non-Linux platforms the
// package degrades: every thread reports as main and WasForked is
// always false.
package mainproc
