// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

// Command atelier-launch submits session launches to a running
// atelier-launcher and queries its state.
//
// A launch is described by a JSONC spec file (comments and trailing
// commas allowed) naming the user, project, executable, and process
// configuration. The password is never part of the spec and never
// appears in argv: it comes from --password-file (or stdin with
// "--password-file -"), or from an interactive prompt when stdin is a
// terminal.
//
// The CLI encrypts the password, sends the profile document on the
// launcher's session socket, and delivers the ciphertext separately on
// the credential socket. The two submissions are correlated by session
// id; the launcher spawns the session once both have arrived.
//
// Subcommands:
//
//	atelier-launch launch --spec session.jsonc [--password-file FILE]
//	atelier-launch list
//	atelier-launch status
package main
