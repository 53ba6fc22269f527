// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"sort"
	"sync"

	"github.com/atelier-foundation/atelier/lib/ipc"
)

// session is one running session process.
type session struct {
	ID       string
	PID      int
	Username string
	Project  string
}

// sessionTable tracks running sessions. It is the launcher's
// "active children" source for the fork tracker's combinator.
type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[string]*session)}
}

func (t *sessionTable) add(s *session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
}

func (t *sessionTable) remove(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}

// HasActiveChildren implements mainproc.ChildReporter.
func (t *sessionTable) HasActiveChildren() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions) > 0
}

func (t *sessionTable) list() []ipc.SessionListEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]ipc.SessionListEntry, 0, len(t.sessions))
	for _, s := range t.sessions {
		entries = append(entries, ipc.SessionListEntry{
			SessionID: s.ID,
			PID:       s.PID,
			Username:  s.Username,
			Project:   s.Project,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SessionID < entries[j].SessionID
	})
	return entries
}
