// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch defines the session launch profile: the serializable
// description of how to start an isolated worker session, covering the
// session's identity, resource limits, process configuration, and the
// credential needed to run as the target user.
//
// A profile moves between the supervisor and the launcher in two pieces
// that must never travel together:
//
//   - The profile document itself (JSON, produced by [Codec.Encode]),
//     which after [EncryptPassword] carries the encryption key and IV
//     but no password and no ciphertext.
//   - The password ciphertext returned by [EncryptPassword], which the
//     caller must deliver through a channel distinct from the profile's
//     transport — never argv, never the environment, never logs.
//
// The profile is the object most likely to be logged or persisted for
// diagnostics, so the actual secret (the ciphertext) is kept out of it.
// The split only protects anything while the two channels stay
// separate; see lib/ipc for the two-socket delivery protocol.
//
// Credential state invariant: once a profile has left construction,
// exactly one of Password and EncryptionKey is non-empty. Encryption
// and decryption are the only transitions, and each runs exactly once
// per profile per side.
package launch
