// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc defines the CBOR message types for the supervisor↔
// launcher Unix socket protocol. Both cmd/atelier-launch and
// cmd/atelier-launcher import this package so the wire types are
// defined once rather than mirrored.
//
// The launcher listens on two sockets, and the split is load-bearing
// for the credential handoff:
//
//   - The session socket carries launch requests (with the encoded
//     profile document), status queries, and session control. The
//     profile document contains the encryption key but neither the
//     password nor its ciphertext.
//   - The credential socket carries only credential delivery
//     messages: the password ciphertext for a pending launch. This is
//     the out-of-band channel — the ciphertext must never travel on
//     the session socket, in process arguments, in the environment,
//     or through logs.
//
// A session launch completes only when both halves for the same
// session id have arrived; see cmd/atelier-launcher for the pairing.
package ipc
