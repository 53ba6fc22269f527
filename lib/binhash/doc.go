// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content digests of executables. The
// launcher hashes its own binary ([Self]) and reports the digest in
// status responses, letting a supervisor verify which build is running
// without restarting anything.
package binhash
