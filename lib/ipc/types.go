// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

// Actions accepted on the session socket.
const (
	// ActionLaunchSession submits a profile document for a new
	// session. The launch stays pending until the matching
	// credential delivery arrives on the credential socket.
	ActionLaunchSession = "launch-session"

	// ActionListSessions lists running sessions.
	ActionListSessions = "list-sessions"

	// ActionStatus reports launcher health and binary identity.
	ActionStatus = "status"
)

// ActionDeliverCredential is the only action accepted on the
// credential socket: it carries the password ciphertext for a pending
// launch.
const ActionDeliverCredential = "deliver-credential"

// Request is a CBOR-encoded request to the launcher.
type Request struct {
	// Action is the request type; see the Action constants.
	Action string `cbor:"action"`

	// SessionID correlates the two halves of a launch: the profile
	// document on the session socket and the credential delivery on
	// the credential socket. Required for launch-session and
	// deliver-credential.
	SessionID string `cbor:"session_id,omitempty"`

	// ProfileDocument is the JSON profile document produced by the
	// launch codec (for launch-session). Its password field is empty
	// and its encryptionKey field is set; the launcher rejects
	// documents in any other credential state.
	ProfileDocument []byte `cbor:"profile_document,omitempty"`

	// Ciphertext is the base64 password ciphertext (for
	// deliver-credential, credential socket only). This is the
	// actual secret: it must never be set on a session socket
	// request and must never be logged.
	Ciphertext string `cbor:"ciphertext,omitempty"`
}

// Response is a CBOR-encoded response from the launcher.
type Response struct {
	// OK indicates whether the request succeeded.
	OK bool `cbor:"ok"`

	// Error contains the failure message if OK is false. A launch
	// whose credential fails to decrypt reports here — it is a
	// launch failure, never a session running with a wrong password.
	Error string `cbor:"error,omitempty"`

	// SessionPID is the spawned session's PID (for launch-session
	// once both halves have arrived and the spawn succeeded).
	SessionPID int `cbor:"session_pid,omitempty"`

	// BinaryHash is the SHA256 hex digest of the launcher's own
	// binary, returned by "status" so the supervisor can verify
	// which build it is talking to.
	BinaryHash string `cbor:"binary_hash,omitempty"`

	// ActiveChildren reports whether the launcher still has child
	// work outstanding (running sessions or archiver jobs), returned
	// by "status".
	ActiveChildren bool `cbor:"active_children,omitempty"`

	// Sessions lists running sessions (for list-sessions).
	Sessions []SessionListEntry `cbor:"sessions,omitempty"`
}

// SessionListEntry describes one running session.
type SessionListEntry struct {
	SessionID string `cbor:"session_id"`
	PID       int    `cbor:"pid"`
	Username  string `cbor:"username"`
	Project   string `cbor:"project"`
}
