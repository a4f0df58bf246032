// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Warren-manager is the sandbox lifecycle daemon. It serves the
// container API, provisions bwrap sandboxes under a global capacity
// cap, evicts idle sessions, and drains everything on shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/warren-foundation/warren/api"
	"github.com/warren-foundation/warren/lib/clock"
	"github.com/warren-foundation/warren/lib/config"
	"github.com/warren-foundation/warren/lib/process"
	"github.com/warren-foundation/warren/lifecycle"
	"github.com/warren-foundation/warren/sandbox"
	"github.com/warren-foundation/warren/statestore"
)

const version = "0.1.0"

// drainTimeout bounds the whole shutdown drain, so a wedged sandbox
// stop cannot keep the process alive indefinitely.
const drainTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var showVersion bool
	pflag.StringVar(&configPath, "config", "", "path to YAML config file (optional; defaults and WARREN_* env apply)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("warren-manager %s\n", version)
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("starting warren-manager",
		"version", version,
		"listen_address", cfg.ListenAddress,
		"max_sandboxes", cfg.MaxSandboxes,
		"idle_threshold", cfg.IdleThreshold,
	)

	var store statestore.Store
	if cfg.StatePath == "" {
		logger.Info("using in-memory state store; sessions do not survive restarts")
		store = statestore.NewMemory()
	} else {
		store, err = statestore.OpenSQLite(cfg.StatePath, logger)
		if err != nil {
			return fmt.Errorf("opening state store: %w", err)
		}
	}

	runtime := sandbox.NewLocal(sandbox.LocalConfig{
		WorkspaceRoot: cfg.WorkspaceRoot,
		UserScope:     os.Geteuid() != 0,
		Logger:        logger,
	})
	caps := runtime.Capabilities()
	if !caps.CanLaunch() {
		return fmt.Errorf("host cannot run sandboxes: %s", caps.SkipReason())
	}
	logger.Info("sandbox capabilities",
		"bwrap", caps.BwrapVersion,
		"systemd_scopes", caps.SystemdUserScopesWork,
		"project_quota", caps.ProjectQuota,
	)

	clk := clock.Real()
	admission := lifecycle.NewAdmission(store, int64(cfg.MaxSandboxes))
	registry := lifecycle.NewRegistry(store, admission, clk, logger)
	provisioner := lifecycle.NewProvisioner(lifecycle.ProvisionerConfig{
		Command:                   cfg.SandboxCommand,
		MemoryBytes:               int64(cfg.MemoryLimit),
		CPUQuotaPercent:           cfg.CPUQuotaPercent,
		PidsLimit:                 cfg.PidsLimit,
		WorkspacePath:             cfg.WorkspacePath,
		WorkspaceSize:             int64(cfg.WorkspaceSize),
		Network:                   sandbox.NetworkMode(cfg.NetworkMode),
		PreferPersistentWorkspace: caps.ProjectQuota,
		StopGrace:                 cfg.StopGrace,
	}, admission, registry, runtime, clk, logger)

	evictor := lifecycle.NewEvictor(lifecycle.EvictorConfig{
		Interval:      cfg.SweepInterval,
		IdleThreshold: cfg.IdleThreshold,
		StopGrace:     cfg.StopGrace,
	}, registry, runtime, clk, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	evictorCtx, stopEvictor := context.WithCancel(context.Background())
	defer stopEvictor()
	go evictor.Run(evictorCtx)

	handler := api.NewHandler(provisioner, registry, logger)
	server := api.NewServer(api.ServerConfig{
		Address: cfg.ListenAddress,
		Handler: handler.Routes(),
		Logger:  logger,
	})

	serveDone := make(chan error, 1)
	go func() { serveDone <- server.Serve(ctx) }()

	// Wait for a termination signal or a server failure; either way
	// the server has stopped once serveDone delivers.
	var serveErr error
	select {
	case serveErr = <-serveDone:
		if serveErr != nil {
			logger.Error("api server failed", "error", serveErr)
		}
	case <-ctx.Done():
		serveErr = <-serveDone
	}

	// Shutdown order: evictor first so no eviction races the drain,
	// then stop every sandbox, then close the store.
	stopEvictor()
	<-evictor.Done()

	reconciler := lifecycle.NewReconciler(registry, runtime, store, cfg.StopGrace, logger)
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := reconciler.Drain(drainCtx); err != nil {
		logger.Error("shutdown drain", "error", err)
	}

	logger.Info("warren-manager stopped")
	return serveErr
}
