// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/atelier-foundation/atelier/lib/ipc"
	"github.com/atelier-foundation/atelier/lib/launch"
	"github.com/atelier-foundation/atelier/lib/secret"
)

func runLaunch(args []string) error {
	flags := pflag.NewFlagSet("launch", pflag.ExitOnError)
	specPath := flags.String("spec", "", "path to the JSONC launch spec (required)")
	sessionID := flags.String("session-id", "", "session id (generated when empty)")
	passwordFile := flags.String("password-file", "", `password file, "-" to read from stdin`)
	resolveClient := socketFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *specPath == "" {
		return fmt.Errorf("--spec is required")
	}
	spec, err := loadSpec(*specPath)
	if err != nil {
		return err
	}

	id := *sessionID
	if id == "" {
		id, err = newSessionID()
		if err != nil {
			return err
		}
	}

	password, err := readPassword(*passwordFile)
	if err != nil {
		return err
	}
	defer password.Close()

	profile := buildProfile(spec, id)
	profile.Password = password.String()

	ciphertext, err := launch.EncryptPassword(profile)
	if err != nil {
		return fmt.Errorf("encrypting password: %w", err)
	}

	result, err := launch.NewCodec().Encode(profile)
	if err != nil {
		return err
	}
	// A silently zeroed limit is fine for a decoder talking to an old
	// peer, but not for a fresh launch the operator just wrote.
	if len(result.Overflowed) > 0 {
		return fmt.Errorf("limits exceed the representable range: %s",
			strings.Join(result.Overflowed, ", "))
	}

	client := resolveClient()

	profileResponse, err := client.session(ipc.Request{
		Action:          ipc.ActionLaunchSession,
		SessionID:       id,
		ProfileDocument: result.Document,
	})
	if err != nil {
		return err
	}
	if !profileResponse.OK {
		return fmt.Errorf("launcher rejected the profile: %s", profileResponse.Error)
	}

	credentialResponse, err := client.credential(ipc.Request{
		Action:     ipc.ActionDeliverCredential,
		SessionID:  id,
		Ciphertext: ciphertext,
	})
	if err != nil {
		return err
	}
	if !credentialResponse.OK {
		return fmt.Errorf("launch failed: %s", credentialResponse.Error)
	}

	fmt.Printf("session %s launched (pid %d)\n", id, credentialResponse.SessionPID)
	return nil
}

// readPassword obtains the launch password without ever putting it in
// argv. Precedence: --password-file, then an interactive prompt when
// stdin is a terminal, then the first line of piped stdin.
func readPassword(path string) (*secret.Buffer, error) {
	if path != "" {
		return secret.ReadFromPath(path)
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		if len(line) == 0 {
			return nil, fmt.Errorf("password is empty")
		}
		return secret.NewFromBytes(line)
	}

	return secret.ReadFromPath("-")
}

func newSessionID() (string, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}
