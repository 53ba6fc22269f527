// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Atelier packages.
//
// [SocketDir] creates a short-pathed temporary directory for Unix
// domain sockets, working around the 108-byte sun_path limit.
//
// [RequireReceive] and [RequireSend] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so individual tests
// do not hang forever on a channel that never delivers.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no Atelier-internal dependencies.
package testutil
