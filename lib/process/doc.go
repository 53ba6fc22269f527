// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds small process-lifecycle helpers shared by the
// Atelier binaries.
package process
