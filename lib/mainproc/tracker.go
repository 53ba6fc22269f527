// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package mainproc

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// ChildReporter answers whether a subsystem currently has child
// processes outstanding. Implemented by the launcher's session table
// and by the output archiver; the tracker only combines the answers,
// it owns neither state.
type ChildReporter interface {
	HasActiveChildren() bool
}

// Tracker is the process-wide fork and thread state. Create one with
// [New] at supervisor startup and share it by reference.
//
// Concurrency contract: mainThreadID is written once by Init before
// any other goroutine exists and is read-only afterward. The forked
// flag is written at most once per process image, from the
// single-threaded post-fork child context, and transitions only
// false→true; it is an atomic.Bool so reads from arbitrary threads
// are race-free. The per-thread cells live in a sync.Map keyed by
// thread id.
type Tracker struct {
	logger *slog.Logger

	// mainThreadID is the OS thread id recorded by Init. Zero until
	// Init runs.
	mainThreadID int

	// threadCells maps OS thread id → cached "is main thread" flag.
	// Each cell is written when its thread first asks and read only
	// by that thread; the map itself handles the cross-thread
	// insertion races.
	threadCells sync.Map

	// forked is set by AtForkChild and never cleared.
	forked atomic.Bool

	// supervisor and archiver are the two collaborators combined by
	// HaveActiveChildren. Either may be nil.
	supervisor ChildReporter
	archiver   ChildReporter
}

// New returns an uninitialized tracker. Call [Tracker.Init] from the
// main goroutine before spawning any other goroutine. A nil logger
// means slog.Default().
func New(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{logger: logger}
}

// SetChildReporters wires the two subsystems consulted by
// [Tracker.HaveActiveChildren]: the session supervisor and the output
// archiver. Call during startup, before the queries are used.
func (t *Tracker) SetChildReporters(supervisor, archiver ChildReporter) {
	t.supervisor = supervisor
	t.archiver = archiver
}

// Init records the calling thread as the main thread. It locks the
// calling goroutine to its OS thread — the recorded identity is only
// meaningful while that binding holds, so the goroutine that calls
// Init must never unlock it.
//
// Init must run exactly once, before any other goroutine is spawned;
// mainThreadID is unsynchronized by that construction.
func (t *Tracker) Init() {
	runtime.LockOSThread()
	t.mainThreadID = currentThreadID()
	t.threadCells.Store(t.mainThreadID, true)
}

// IsMainThread reports whether the calling thread is the one that ran
// Init. Meaningful only from goroutines locked to their OS thread.
//
// The answer comes from the calling thread's cached cell (lazily
// false for every thread but the initializing one), but the identity
// comparison is recomputed on every call and a disagreement is logged:
// cached cells are inherited verbatim across a fork, where they can be
// wrong for the child's surviving thread. The check is a continuous
// correctness signal for operators, not a recoverable error.
func (t *Tracker) IsMainThread() bool {
	threadID := currentThreadID()

	cell, ok := t.threadCells.Load(threadID)
	if !ok {
		cell, _ = t.threadCells.LoadOrStore(threadID, false)
	}
	cached := cell.(bool)

	if recomputed := threadID == t.mainThreadID; cached != recomputed {
		t.logger.Error("main thread cache disagrees with thread identity",
			"thread_id", threadID,
			"main_thread_id", t.mainThreadID,
			"cached", cached)
	}

	return cached
}

// WasForked reports whether this process image is a fork-without-exec
// child. Always false on platforms without fork semantics.
func (t *Tracker) WasForked() bool {
	return t.forked.Load()
}

// PrepareFork runs in the parent immediately before a fork. It is a
// no-op off the main thread: fork detection exists for forks that keep
// running supervisor code, and only the main thread performs those.
// An extension point for pre-fork quiescing; currently nothing to do.
func (t *Tracker) PrepareFork() {
	if currentThreadID() != t.mainThreadID {
		return
	}
}

// AtForkParent runs in the parent after a fork, with the same
// main-thread guard as PrepareFork.
func (t *Tracker) AtForkParent() {
	if currentThreadID() != t.mainThreadID {
		return
	}
}

// AtForkChild runs in the freshly forked child, which starts with
// exactly the forking thread running — so this store has no possible
// concurrent writer. The flag is permanent for this process image.
func (t *Tracker) AtForkChild() {
	if !forkSupported {
		return
	}
	t.forked.Store(true)
}

// HaveActiveChildren reports whether any child work is outstanding:
// the session supervisor has active children or the archiver has
// running children. The owning process consults this before exiting
// or restarting so it does not orphan work.
func (t *Tracker) HaveActiveChildren() bool {
	if t.supervisor != nil && t.supervisor.HasActiveChildren() {
		return true
	}
	return t.archiver != nil && t.archiver.HasActiveChildren()
}
