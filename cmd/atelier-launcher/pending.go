// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"sync"
	"time"
)

// launchHalf is one side of a launch: the profile document from the
// session socket, or the ciphertext from the credential socket.
type launchHalf struct {
	profileDocument []byte
	ciphertext      string
}

// launchPair is a completed pairing, ready to decrypt and spawn.
type launchPair struct {
	profileDocument []byte
	ciphertext      string
}

type pendingEntry struct {
	half     launchHalf
	deadline time.Time
}

// pendingTable holds unpaired launch halves keyed by session id.
// Entries expire after the pending timeout: a profile whose credential
// never arrives (or the reverse) must not accumulate, since each
// pending profile carries live key material.
type pendingTable struct {
	mu      sync.Mutex
	timeout time.Duration
	entries map[string]pendingEntry
}

func newPendingTable(timeout time.Duration) *pendingTable {
	return &pendingTable{
		timeout: timeout,
		entries: make(map[string]pendingEntry),
	}
}

// put records a half. If the counterpart half is already present, the
// entry is removed and the completed pair returned; otherwise nil.
// Duplicate halves for the same session id are an error.
func (p *pendingTable) put(sessionID string, half launchHalf) (*launchPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.purgeExpiredLocked(time.Now())

	existing, ok := p.entries[sessionID]
	if !ok {
		p.entries[sessionID] = pendingEntry{
			half:     half,
			deadline: time.Now().Add(p.timeout),
		}
		return nil, nil
	}

	pair := &launchPair{
		profileDocument: existing.half.profileDocument,
		ciphertext:      existing.half.ciphertext,
	}
	switch {
	case half.profileDocument != nil:
		if pair.profileDocument != nil {
			return nil, fmt.Errorf("session %q already has a pending profile", sessionID)
		}
		pair.profileDocument = half.profileDocument
	case half.ciphertext != "":
		if pair.ciphertext != "" {
			return nil, fmt.Errorf("session %q already has a pending credential", sessionID)
		}
		pair.ciphertext = half.ciphertext
	default:
		return nil, fmt.Errorf("empty launch half for session %q", sessionID)
	}

	delete(p.entries, sessionID)
	return pair, nil
}

// purgeExpiredLocked drops entries past their deadline. Called with
// the lock held on every put; expiry is lazy rather than timer-driven.
func (p *pendingTable) purgeExpiredLocked(now time.Time) {
	for sessionID, entry := range p.entries {
		if now.After(entry.deadline) {
			delete(p.entries, sessionID)
		}
	}
}
