// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"fmt"

	"github.com/warren-foundation/warren/statestore"
)

// capacityCounter is the store key holding the number of occupied
// capacity slots.
const capacityCounter = "capacity"

// Admission grants and releases capacity slots against a global cap.
// It holds no state of its own: the counter lives in the store, and
// both operations are single atomic store calls, so any number of
// concurrent callers across the process see a consistent count.
type Admission struct {
	store statestore.Store
	max   int64
}

// NewAdmission creates an admission controller capping occupied slots
// at max.
func NewAdmission(store statestore.Store, max int64) *Admission {
	return &Admission{store: store, max: max}
}

// Reserve attempts to occupy one slot. It returns false without
// mutation when all slots are taken. Two concurrent calls with one
// slot left cannot both succeed: the check and the increment are one
// indivisible store operation.
func (a *Admission) Reserve(ctx context.Context) (bool, error) {
	granted, err := a.store.IncrementBelow(ctx, capacityCounter, a.max)
	if err != nil {
		return false, fmt.Errorf("reserving capacity slot: %w", err)
	}
	return granted, nil
}

// Release frees one slot. Releasing more times than Reserve succeeded
// clamps the counter at zero instead of corrupting the capacity
// accounting downward, so a retried delete is harmless.
func (a *Admission) Release(ctx context.Context) error {
	if err := a.store.DecrementFloor(ctx, capacityCounter); err != nil {
		return fmt.Errorf("releasing capacity slot: %w", err)
	}
	return nil
}

// InUse returns the number of currently occupied slots.
func (a *Admission) InUse(ctx context.Context) (int64, error) {
	count, err := a.store.Counter(ctx, capacityCounter)
	if err != nil {
		return 0, fmt.Errorf("reading capacity counter: %w", err)
	}
	return count, nil
}
