// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warren-foundation/warren/sandbox"
	"github.com/warren-foundation/warren/statestore"
)

// drainParallelism bounds how many stop requests run at once during
// shutdown.
const drainParallelism = 8

// Reconciler drains every tracked sandbox at shutdown.
type Reconciler struct {
	registry  *Registry
	runtime   sandbox.Runtime
	store     statestore.Store
	stopGrace time.Duration
	logger    *slog.Logger
}

// NewReconciler wires a reconciler to its collaborators.
func NewReconciler(registry *Registry, runtime sandbox.Runtime, store statestore.Store, stopGrace time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		registry:  registry,
		runtime:   runtime,
		store:     store,
		stopGrace: stopGrace,
		logger:    logger,
	}
}

// Drain reads the registry once, stops every tracked sandbox
// concurrently, waits for all attempts to settle, and closes the
// store. Best effort throughout: a sandbox that is already gone is
// success, a stop failure is logged, and a registry read failure
// still closes the store. Callers must stop the evictor before
// calling Drain so no new eviction work races the shutdown.
func (r *Reconciler) Drain(ctx context.Context) error {
	sessions, err := r.registry.ListAll(ctx)
	if err != nil {
		r.logger.Error("reading sessions for shutdown drain", "error", err)
		return r.store.Close()
	}

	r.logger.Info("draining sessions", "count", len(sessions))

	sem := make(chan struct{}, drainParallelism)
	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(session *Session) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := r.runtime.Stop(ctx, session.SandboxName, r.stopGrace); err != nil {
				r.logger.Error("stopping sandbox during drain",
					"session_id", session.ID, "sandbox", session.SandboxName, "error", err)
			}
		}(session)
	}
	wg.Wait()

	return r.store.Close()
}
