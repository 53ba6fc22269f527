// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atelier-foundation/atelier/lib/config"
	"github.com/atelier-foundation/atelier/lib/mainproc"
	"github.com/atelier-foundation/atelier/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath string
		runDir     string
	)

	flag.StringVar(&configPath, "config", "", "path to launcher.yaml (required)")
	flag.StringVar(&runDir, "run-dir", "", "override the runtime directory for sockets")
	flag.Parse()

	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if runDir != "" {
		cfg.Paths.Run = runDir
		cfg.Launcher.SessionSocket = filepath.Join(runDir, "session.sock")
		cfg.Launcher.CredentialSocket = filepath.Join(runDir, "credential.sock")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Record the main thread before any other goroutine exists.
	tracker := mainproc.New(logger)
	tracker.Init()

	pendingTimeout, err := time.ParseDuration(cfg.Launcher.PendingLaunchTimeout)
	if err != nil {
		return fmt.Errorf("invalid pending_launch_timeout: %w", err)
	}

	for _, dir := range []string{cfg.Paths.Run, cfg.Paths.State, cfg.Paths.Archive} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	archiver := newArchiver(cfg.Paths.Archive, logger)
	server := newServer(serverOptions{
		spawner:        newExecSpawner(cfg.Paths.State, logger),
		archiver:       archiver,
		tracker:        tracker,
		session:        cfg.Session,
		pendingTimeout: pendingTimeout,
		logger:         logger,
	})
	tracker.SetChildReporters(server.sessions, archiver)

	sessionListener, err := listenUnix(cfg.Launcher.SessionSocket)
	if err != nil {
		return err
	}
	defer sessionListener.Close()

	credentialListener, err := listenUnix(cfg.Launcher.CredentialSocket)
	if err != nil {
		return err
	}
	defer credentialListener.Close()

	logger.Info("launcher ready",
		"session_socket", cfg.Launcher.SessionSocket,
		"credential_socket", cfg.Launcher.CredentialSocket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go server.serve(ctx, sessionListener, server.handleSessionRequest)
	go server.serve(ctx, credentialListener, server.handleCredentialRequest)

	<-ctx.Done()

	if tracker.HaveActiveChildren() {
		logger.Warn("shutting down with child work outstanding")
	}
	archiver.close()
	logger.Info("launcher stopped")
	return nil
}

// listenUnix removes a stale socket file and listens on path.
func listenUnix(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", path, err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}
	// Sockets carry launch credentials; owner-only.
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restricting socket %s: %w", path, err)
	}
	return listener, nil
}
