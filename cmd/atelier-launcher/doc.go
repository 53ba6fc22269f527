// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// atelier-launcher is the session launcher daemon. It receives launch
// profiles from a supervisor, pairs each with the password ciphertext
// delivered on a separate socket, decrypts the credential, and spawns
// the session process.
//
// Two Unix sockets, by design:
//
//   - session.sock: launch requests (profile documents), session
//     listing, launcher status.
//   - credential.sock: password ciphertext delivery only.
//
// A profile document carries the key that decrypts the password; the
// ciphertext is the secret. Splitting the channels means a capture of
// either socket's traffic alone recovers nothing. A launch completes
// only when both halves for the same session id have arrived; unpaired
// halves expire after the configured pending-launch timeout.
//
// The session binary reads its launch password as the first line of
// stdin, ahead of the profile's standard input payload. This keeps the
// password out of argv and the environment, both of which are visible
// to every process on the machine.
package main
