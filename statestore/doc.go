// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package statestore is warren's shared state capability: a small
// key-value surface with set membership, batched reads, and one
// atomic counter primitive.
//
// The counter primitive is the load-bearing part. IncrementBelow is a
// single indivisible check-and-increment at the store — two callers
// racing for the last capacity slot can never both win — and
// DecrementFloor clamps at zero so a retried release can never drive
// the counter negative.
//
// Two implementations ship: SQLite (production, WAL-mode file via
// lib/sqlitepool) and Memory (tests and single-process development).
// Both satisfy the same semantics, including the atomicity of the
// counter operations and RemoveMember's was-present report.
package statestore
