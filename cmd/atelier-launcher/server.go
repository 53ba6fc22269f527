// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/atelier-foundation/atelier/lib/binhash"
	"github.com/atelier-foundation/atelier/lib/codec"
	"github.com/atelier-foundation/atelier/lib/config"
	"github.com/atelier-foundation/atelier/lib/ipc"
	"github.com/atelier-foundation/atelier/lib/launch"
	"github.com/atelier-foundation/atelier/lib/mainproc"
)

type serverOptions struct {
	spawner        Spawner
	archiver       *archiver
	tracker        *mainproc.Tracker
	session        config.SessionConfig
	pendingTimeout time.Duration
	logger         *slog.Logger
}

// server pairs profile documents with credential deliveries and turns
// complete pairs into running sessions.
type server struct {
	profileCodec *launch.Codec
	spawner      Spawner
	sessions     *sessionTable
	pending      *pendingTable
	archiver     *archiver
	tracker      *mainproc.Tracker
	defaults     config.SessionConfig
	logger       *slog.Logger
}

func newServer(options serverOptions) *server {
	profileCodec := launch.NewCodec()
	profileCodec.SetLogger(options.logger)
	return &server{
		profileCodec: profileCodec,
		spawner:      options.spawner,
		sessions:     newSessionTable(),
		pending:      newPendingTable(options.pendingTimeout),
		archiver:     options.archiver,
		tracker:      options.tracker,
		defaults:     options.session,
		logger:       options.logger,
	}
}

// serve accepts connections until ctx is done, running each through
// handler. Requests on a connection are processed in order; every
// request gets exactly one response.
func (s *server) serve(ctx context.Context, listener net.Listener, handler func(*ipc.Request) ipc.Response) {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}
		go s.handleConn(conn, handler)
	}
}

func (s *server) handleConn(conn net.Conn, handler func(*ipc.Request) ipc.Response) {
	defer conn.Close()

	decoder := codec.NewDecoder(conn)
	encoder := codec.NewEncoder(conn)

	for {
		var request ipc.Request
		if err := decoder.Decode(&request); err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Error("decoding request", "error", err)
			}
			return
		}

		response := handler(&request)
		if err := encoder.Encode(response); err != nil {
			s.logger.Error("encoding response", "error", err)
			return
		}
	}
}

// handleSessionRequest serves the session socket: launches, listing,
// status. Credential material is refused here — the ciphertext has its
// own socket precisely so it never shares the profile's transport.
func (s *server) handleSessionRequest(request *ipc.Request) ipc.Response {
	if request.Ciphertext != "" {
		return errorResponse("ciphertext is not accepted on the session socket")
	}

	switch request.Action {
	case ipc.ActionLaunchSession:
		if request.SessionID == "" {
			return errorResponse("launch-session requires a session id")
		}
		if len(request.ProfileDocument) == 0 {
			return errorResponse("launch-session requires a profile document")
		}
		return s.acceptHalf(request.SessionID, launchHalf{profileDocument: request.ProfileDocument})

	case ipc.ActionListSessions:
		return ipc.Response{OK: true, Sessions: s.sessions.list()}

	case ipc.ActionStatus:
		return s.status()

	default:
		return errorResponse(fmt.Sprintf("unknown action %q", request.Action))
	}
}

// handleCredentialRequest serves the credential socket. Only
// credential delivery is accepted here.
func (s *server) handleCredentialRequest(request *ipc.Request) ipc.Response {
	if request.Action != ipc.ActionDeliverCredential {
		return errorResponse(fmt.Sprintf("action %q is not accepted on the credential socket", request.Action))
	}
	if request.SessionID == "" {
		return errorResponse("deliver-credential requires a session id")
	}
	if request.Ciphertext == "" {
		return errorResponse("deliver-credential requires a ciphertext")
	}
	return s.acceptHalf(request.SessionID, launchHalf{ciphertext: request.Ciphertext})
}

// acceptHalf records one half of a launch. The half that completes the
// pair receives the launch outcome; an unpaired half is accepted and
// waits for its counterpart until the pending timeout.
func (s *server) acceptHalf(sessionID string, half launchHalf) ipc.Response {
	pair, err := s.pending.put(sessionID, half)
	if err != nil {
		return errorResponse(err.Error())
	}
	if pair == nil {
		return ipc.Response{OK: true}
	}
	return s.completeLaunch(sessionID, pair)
}

// completeLaunch runs once both halves for a session have arrived:
// decode the profile, decrypt the password with the out-of-band
// ciphertext, spawn. Any failure is a launch failure — a session is
// never spawned with a missing or garbage password.
func (s *server) completeLaunch(sessionID string, pair *launchPair) ipc.Response {
	profile, err := s.profileCodec.Decode(pair.profileDocument)
	if err != nil {
		s.logger.Error("launch failed: profile decode", "session_id", sessionID, "error", err)
		return errorResponse(fmt.Sprintf("decoding profile: %v", err))
	}

	s.applyDefaults(profile)
	if profile.ExecutablePath == "" {
		s.logger.Error("launch failed: no executable", "session_id", sessionID)
		return errorResponse("profile does not name an executable and no default is configured")
	}

	if state := profile.CredentialState(); state != launch.CredentialEncrypted {
		s.logger.Error("launch failed: profile not in encrypted credential state",
			"session_id", sessionID)
		return errorResponse("profile is not in the encrypted credential state")
	}

	if err := launch.DecryptPassword(profile, pair.ciphertext); err != nil {
		s.logger.Error("launch failed: credential decrypt", "session_id", sessionID, "error", err)
		return errorResponse(fmt.Sprintf("decrypting credential: %v", err))
	}

	spawned, err := s.spawner.Spawn(sessionID, profile)
	if err != nil {
		s.logger.Error("launch failed: spawn", "session_id", sessionID, "error", err)
		return errorResponse(fmt.Sprintf("spawning session: %v", err))
	}

	s.sessions.add(&session{
		ID:       sessionID,
		PID:      spawned.PID,
		Username: profile.Context.Username,
		Project:  profile.Context.Scope.Project(),
	})
	go s.reap(sessionID, spawned)

	s.logger.Info("session launched",
		"session_id", sessionID,
		"pid", spawned.PID,
		"username", profile.Context.Username,
		"project", profile.Context.Scope.Project())

	return ipc.Response{OK: true, SessionPID: spawned.PID}
}

// applyDefaults fills the profile's executable and limits from the
// launcher's session defaults when the launch request set neither.
func (s *server) applyDefaults(profile *launch.Profile) {
	if profile.ExecutablePath == "" {
		profile.ExecutablePath = s.defaults.ExecutablePath
	}
	if limitsUnset(profile.Config.Limits) {
		profile.Config.Limits = s.defaults.DefaultLimits.ResourceLimits()
	}
}

// limitsUnset reports whether every limit field is at its zero value.
// A profile with any limit set keeps its limits verbatim; defaults are
// all-or-nothing, never merged per field.
func limitsUnset(limits launch.ResourceLimits) bool {
	return limits.Priority == 0 &&
		limits.MemoryLimitBytes == 0 &&
		limits.StackLimitBytes == 0 &&
		limits.UserProcessesLimit == 0 &&
		limits.CPULimit == 0 &&
		limits.NiceLimit == 0 &&
		limits.FilesLimit == 0 &&
		len(limits.CPUAffinity) == 0
}

// reap waits for a session to exit, removes it from the table, and
// hands its captured output to the archiver.
func (s *server) reap(sessionID string, spawned *SpawnedSession) {
	err := <-spawned.Done
	s.sessions.remove(sessionID)
	if err != nil {
		s.logger.Info("session exited", "session_id", sessionID, "error", err)
	} else {
		s.logger.Info("session exited", "session_id", sessionID)
	}
	if spawned.OutputPath != "" {
		s.archiver.enqueue(spawned.OutputPath)
	}
}

func (s *server) status() ipc.Response {
	response := ipc.Response{
		OK:             true,
		ActiveChildren: s.tracker.HaveActiveChildren(),
	}
	digest, err := binhash.Self()
	if err != nil {
		s.logger.Error("hashing own binary", "error", err)
	} else {
		response.BinaryHash = binhash.FormatDigest(digest)
	}
	return response
}

func errorResponse(message string) ipc.Response {
	return ipc.Response{OK: false, Error: message}
}
