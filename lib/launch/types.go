// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import "math"

// SessionScope identifies the project and scope a session runs under.
// Scopes are immutable: build one with [ScopeFromProjectID] and read it
// through the accessors. Profiles never carry a scope that did not pass
// through the factory, so the project/id pairing is validated in one
// place if validation is ever added.
type SessionScope struct {
	project string
	id      string
}

// ScopeFromProjectID builds a SessionScope from a project name and a
// scope identifier. This is the only constructor; the decoder uses it
// to rebuild scopes from profile documents.
func ScopeFromProjectID(project, id string) SessionScope {
	return SessionScope{project: project, id: id}
}

// Project returns the project name of the scope.
func (s SessionScope) Project() string { return s.project }

// ID returns the scope identifier.
func (s SessionScope) ID() string { return s.id }

// SessionContext identifies who and what a session belongs to.
type SessionContext struct {
	// Username is the account the session process runs as.
	Username string

	// Scope is the project/id pair the session is bound to.
	Scope SessionScope
}

// RLimit is a resource limit value: a count or byte quantity, with
// [Unlimited] meaning no limit. Limits ride profile documents as JSON
// numbers, which cannot represent the full uint64 range — see
// [Codec.Encode] for the overflow handling.
type RLimit uint64

// Unlimited is the RLimit value meaning "no limit".
const Unlimited RLimit = math.MaxUint64

// CPUAffinity is a per-logical-CPU eligibility mask: one entry per
// CPU, true when the session may be scheduled there. The decoder
// rejects documents whose affinity entries are not strictly boolean —
// a numeric 1 is a decode error, never coerced.
type CPUAffinity []bool

// ResourceLimits are the numeric and affinity limits applied to a
// session process at spawn time.
type ResourceLimits struct {
	// Priority is the scheduling priority (nice value) for the
	// session process.
	Priority int32

	MemoryLimitBytes   RLimit
	StackLimitBytes    RLimit
	UserProcessesLimit RLimit
	CPULimit           RLimit
	NiceLimit          RLimit
	FilesLimit         RLimit

	// CPUAffinity restricts which logical CPUs the session may run
	// on. Empty means no restriction.
	CPUAffinity CPUAffinity
}

// EnvironmentVariable is a single (name, value) pair in a session's
// environment. Names are not required to be unique at this layer;
// deduplication policy belongs to the spawner.
type EnvironmentVariable struct {
	Name  string
	Value string
}

// EnvironmentList is a session environment with insertion order
// preserved. It serializes as a JSON object whose member order matches
// the list order; see environment.go for the ordered codec.
type EnvironmentList []EnvironmentVariable

// StdStreamBehavior selects how the spawned session's stdout/stderr
// are handled. The value is passed through to the spawner unchanged;
// this layer only transports it.
type StdStreamBehavior int

const (
	// StdStreamCapture captures the session's output streams.
	StdStreamCapture StdStreamBehavior = iota

	// StdStreamInherit lets the session inherit the launcher's
	// streams.
	StdStreamInherit
)

// ProcessConfig is the full process launch configuration for a
// session.
type ProcessConfig struct {
	// Args are the command-line arguments, not including the
	// executable path.
	Args []string

	// Environment is the ordered session environment.
	Environment EnvironmentList

	// StdInput is written to the session's stdin after spawn.
	StdInput string

	// StdStreamBehavior selects output stream handling.
	StdStreamBehavior StdStreamBehavior

	// Limits are the resource limits applied at spawn time.
	Limits ResourceLimits
}

// Profile is a session launch profile: everything the launcher needs
// to spawn a session, in one serializable unit. Profiles are built per
// launch request, mutated exactly once by [EncryptPassword] before
// leaving the supervisor, mutated exactly once by [DecryptPassword] on
// the launcher, then consumed read-only. They are not pooled or
// reused.
type Profile struct {
	// Context identifies the user and scope of the session.
	Context SessionContext

	// Password is the plaintext launch credential. Non-empty only
	// before encryption and after decryption; empty while the
	// profile is in transit.
	Password string

	// EncryptionKey is the combined key material for the encrypted
	// password: base64(key) and base64(IV) joined by a single "|".
	// Non-empty only while the profile is in transit. The ciphertext
	// it decrypts is deliberately NOT part of the profile.
	EncryptionKey string

	// ExecutablePath is the session binary to spawn.
	ExecutablePath string

	// Config is the process launch configuration.
	Config ProcessConfig
}

// CredentialState describes which credential field a profile currently
// carries.
type CredentialState int

const (
	// CredentialPlaintext: Password set, EncryptionKey empty. The
	// state of a freshly constructed or decrypted profile.
	CredentialPlaintext CredentialState = iota

	// CredentialEncrypted: EncryptionKey set, Password empty. The
	// only state a profile may be in while in transit.
	CredentialEncrypted

	// CredentialInvalid: both fields set, or neither. A profile in
	// this state has been corrupted or mishandled and must not be
	// spawned.
	CredentialInvalid
)

// CredentialState reports the profile's credential state. Receivers
// should reject profiles in [CredentialInvalid] state rather than
// guessing which field to trust.
//
// A profile with both fields empty is also invalid: it can only arise
// from a construction bug or from decrypting a profile that was never
// encrypted, and spawning it would silently launch with no credential.
func (p *Profile) CredentialState() CredentialState {
	hasPassword := p.Password != ""
	hasKey := p.EncryptionKey != ""
	switch {
	case hasPassword && !hasKey:
		return CredentialPlaintext
	case hasKey && !hasPassword:
		return CredentialEncrypted
	default:
		return CredentialInvalid
	}
}
