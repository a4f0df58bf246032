// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/warren-foundation/warren/lib/clock"
	"github.com/warren-foundation/warren/sandbox"
)

// EvictorConfig configures the inactivity sweep.
type EvictorConfig struct {
	// Interval is the sweep period.
	Interval time.Duration

	// IdleThreshold is how long a session may sit untouched. A
	// session idle exactly the threshold survives the sweep; one
	// past it does not.
	IdleThreshold time.Duration

	// StopGrace bounds each evicted sandbox's SIGTERM-to-SIGKILL
	// window.
	StopGrace time.Duration
}

// Evictor periodically stops and deregisters sessions idle past the
// threshold.
type Evictor struct {
	config   EvictorConfig
	registry *Registry
	runtime  sandbox.Runtime
	clock    clock.Clock
	logger   *slog.Logger
	done     chan struct{}
}

// NewEvictor wires an evictor to its collaborators.
func NewEvictor(config EvictorConfig, registry *Registry, runtime sandbox.Runtime, clk clock.Clock, logger *slog.Logger) *Evictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evictor{
		config:   config,
		registry: registry,
		runtime:  runtime,
		clock:    clk,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Run sweeps on the configured interval until ctx is cancelled, then
// closes Done. The shutdown path cancels this context and waits on
// Done before draining, so no eviction runs concurrently with the
// drain.
func (e *Evictor) Run(ctx context.Context) {
	defer close(e.done)

	ticker := e.clock.NewTicker(e.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (e *Evictor) Done() <-chan struct{} { return e.done }

// sweep evicts every session idle strictly past the threshold. A
// registry read failure aborts the whole tick; the next tick retries.
// A stop failure for one session is logged and its record is still
// deleted: an orphaned sandbox that later exits on its own is
// harmless once the record is gone.
func (e *Evictor) sweep(ctx context.Context) {
	sessions, err := e.registry.ListAll(ctx)
	if err != nil {
		e.logger.Error("eviction sweep aborted", "error", err)
		return
	}

	now := e.clock.Now().UnixMilli()
	thresholdMillis := e.config.IdleThreshold.Milliseconds()
	for _, session := range sessions {
		idle := now - session.LastActive
		if idle <= thresholdMillis {
			continue
		}

		e.logger.Info("evicting idle session",
			"session_id", session.ID,
			"sandbox", session.SandboxName,
			"idle", time.Duration(idle)*time.Millisecond)

		if err := e.runtime.Stop(ctx, session.SandboxName, e.config.StopGrace); err != nil {
			e.logger.Error("stopping evicted sandbox",
				"session_id", session.ID, "sandbox", session.SandboxName, "error", err)
		}
		if err := e.registry.Delete(ctx, session.ID); err != nil {
			e.logger.Error("deleting evicted session", "session_id", session.ID, "error", err)
		}
	}
}
