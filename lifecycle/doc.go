// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package lifecycle is warren's core: it decides which sandboxes may
// exist, tracks them, and destroys them.
//
// Five components share two collaborators (the state store and the
// sandbox runtime):
//
//   - [Admission] grants and releases capacity slots against a global
//     cap using the store's atomic check-and-increment, so concurrent
//     requests can never exceed the cap.
//   - [Registry] is the single source of truth for which sessions
//     exist. Its Delete releases the capacity slot at most once, no
//     matter how many of the three deletion triggers (explicit
//     delete, sandbox self-exit, eviction) race on the same session.
//   - [Provisioner] turns a granted slot into a running sandbox,
//     falling back from a persistent quota-limited workspace to a
//     size-capped tmpfs when the host rejects the former, and
//     releasing the slot if anything after the grant fails.
//   - [Evictor] periodically sweeps sessions idle past a threshold.
//   - [Reconciler] drains every tracked sandbox at shutdown.
//
// A session disappears only through Registry.Delete; every trigger
// converges there and idempotence absorbs the races.
package lifecycle
