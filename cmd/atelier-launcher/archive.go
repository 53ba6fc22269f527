// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// archiver moves captured session output into the archive directory
// after a session exits. It is the second "child work" source for the
// fork tracker's combinator: the launcher must not exit while archive
// jobs are still running, or output is lost.
type archiver struct {
	dir    string
	logger *slog.Logger

	jobs   chan string
	active atomic.Int64
	wg     sync.WaitGroup
}

func newArchiver(dir string, logger *slog.Logger) *archiver {
	a := &archiver{
		dir:    dir,
		logger: logger,
		jobs:   make(chan string, 16),
	}
	a.wg.Add(1)
	go a.worker()
	return a
}

// enqueue schedules an output file for archiving. The active count is
// raised before the job is queued so HasActiveChildren never reports
// idle while a job is in flight between queue and worker.
func (a *archiver) enqueue(outputPath string) {
	a.active.Add(1)
	a.jobs <- outputPath
}

// HasActiveChildren implements mainproc.ChildReporter.
func (a *archiver) HasActiveChildren() bool {
	return a.active.Load() > 0
}

// close drains remaining jobs and stops the worker.
func (a *archiver) close() {
	close(a.jobs)
	a.wg.Wait()
}

func (a *archiver) worker() {
	defer a.wg.Done()
	for outputPath := range a.jobs {
		a.archive(outputPath)
		a.active.Add(-1)
	}
}

func (a *archiver) archive(outputPath string) {
	destination := filepath.Join(a.dir, filepath.Base(outputPath))

	source, err := os.Open(outputPath)
	if err != nil {
		a.logger.Error("opening session output for archive", "path", outputPath, "error", err)
		return
	}
	defer source.Close()

	target, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		a.logger.Error("creating archive file", "path", destination, "error", err)
		return
	}
	defer target.Close()

	if _, err := io.Copy(target, source); err != nil {
		a.logger.Error("copying session output to archive", "path", destination, "error", err)
		return
	}

	if err := os.Remove(outputPath); err != nil {
		a.logger.Error("removing archived session output", "path", outputPath, "error", err)
	}
}
