// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/atelier-foundation/atelier/lib/launch"
)

// applyResourceLimits applies a profile's limits to an already-started
// child via prlimit(2), setpriority(2), and sched_setaffinity(2). A
// zero limit means "not set" and is skipped; [launch.Unlimited] maps
// to RLIM_INFINITY. Failures are logged per limit rather than killing
// the session — the process is already running, and a partially
// limited session is more useful than a dead one.
func applyResourceLimits(pid int, limits launch.ResourceLimits, logger *slog.Logger) {
	setRlimit := func(resource int, name string, value launch.RLimit) {
		if value == 0 {
			return
		}
		rlimit := unix.Rlimit{Cur: uint64(value), Max: uint64(value)}
		if value == launch.Unlimited {
			rlimit = unix.Rlimit{Cur: unix.RLIM_INFINITY, Max: unix.RLIM_INFINITY}
		}
		if err := unix.Prlimit(pid, resource, &rlimit, nil); err != nil {
			logger.Error("setting resource limit", "limit", name, "pid", pid, "error", err)
		}
	}

	setRlimit(unix.RLIMIT_AS, "memory", limits.MemoryLimitBytes)
	setRlimit(unix.RLIMIT_STACK, "stack", limits.StackLimitBytes)
	setRlimit(unix.RLIMIT_NPROC, "processes", limits.UserProcessesLimit)
	setRlimit(unix.RLIMIT_CPU, "cpu", limits.CPULimit)
	setRlimit(unix.RLIMIT_NICE, "nice", limits.NiceLimit)
	setRlimit(unix.RLIMIT_NOFILE, "files", limits.FilesLimit)

	if limits.Priority != 0 {
		if err := unix.Setpriority(unix.PRIO_PROCESS, pid, int(limits.Priority)); err != nil {
			logger.Error("setting process priority", "pid", pid, "error", err)
		}
	}

	if len(limits.CPUAffinity) > 0 {
		var cpuSet unix.CPUSet
		for cpu, eligible := range limits.CPUAffinity {
			if eligible {
				cpuSet.Set(cpu)
			}
		}
		if cpuSet.Count() == 0 {
			logger.Error("cpu affinity mask excludes every cpu, ignoring", "pid", pid)
			return
		}
		if err := unix.SchedSetaffinity(pid, &cpuSet); err != nil {
			logger.Error("setting cpu affinity", "pid", pid, "error", err)
		}
	}
}
