// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/atelier-foundation/atelier/lib/codec"
	"github.com/atelier-foundation/atelier/lib/config"
	"github.com/atelier-foundation/atelier/lib/ipc"
)

// client holds the launcher's socket paths.
type client struct {
	sessionSocket    string
	credentialSocket string
}

// socketFlags registers the socket location flags shared by every
// subcommand and returns a resolver that applies precedence: explicit
// socket flags win over --run-dir, which wins over the built-in
// default run directory.
func socketFlags(flags *pflag.FlagSet) func() *client {
	runDir := flags.String("run-dir", "", "launcher runtime directory containing the sockets")
	sessionSocket := flags.String("session-socket", "", "session socket path (overrides --run-dir)")
	credentialSocket := flags.String("credential-socket", "", "credential socket path (overrides --run-dir)")

	return func() *client {
		dir := *runDir
		if dir == "" {
			dir = config.Default().Paths.Run
		}
		c := &client{
			sessionSocket:    filepath.Join(dir, "session.sock"),
			credentialSocket: filepath.Join(dir, "credential.sock"),
		}
		if *sessionSocket != "" {
			c.sessionSocket = *sessionSocket
		}
		if *credentialSocket != "" {
			c.credentialSocket = *credentialSocket
		}
		return c
	}
}

// roundTrip sends one request on the socket and reads one response.
func (c *client) roundTrip(socketPath string, request ipc.Request) (ipc.Response, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return ipc.Response{}, fmt.Errorf("connecting to launcher at %s: %w", socketPath, err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return ipc.Response{}, fmt.Errorf("sending request: %w", err)
	}
	var response ipc.Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		return ipc.Response{}, fmt.Errorf("reading response: %w", err)
	}
	return response, nil
}

func (c *client) session(request ipc.Request) (ipc.Response, error) {
	return c.roundTrip(c.sessionSocket, request)
}

func (c *client) credential(request ipc.Request) (ipc.Response, error) {
	return c.roundTrip(c.credentialSocket, request)
}
