// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Atelier's standard CBOR encoding
// configuration.
//
// Atelier uses two serialization formats with a clear boundary:
//
//   - JSON for the launch profile document (lib/launch), which is the
//     externally visible contract between supervisor and launcher and
//     may be inspected, logged, or carried by any transport the two
//     sides agree on.
//   - CBOR for the socket protocol framing around it (lib/ipc): the
//     session socket messages and the credential delivery messages.
//
// This package holds the shared encoder and decoder modes so every
// package frames messages identically. The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2); the decoder ignores unknown
// fields for forward compatibility.
//
// For buffer-oriented use:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For socket streams:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
