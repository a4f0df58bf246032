// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"errors"
)

// ErrNotFound reports a Get for a key with no value.
var ErrNotFound = errors.New("statestore: key not found")

// ErrClosed reports an operation on a store after Close.
var ErrClosed = errors.New("statestore: closed")

// Store is the shared state surface the lifecycle manager runs on.
// All operations are safe for concurrent use. Implementations must
// make IncrementBelow and DecrementFloor atomic with respect to every
// other caller, and RemoveMember must atomically report whether the
// member was present — the registry's release-exactly-once guarantee
// rests on that report.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// AddMember adds member to the named set. Adding a present
	// member is a no-op.
	AddMember(ctx context.Context, set, member string) error

	// RemoveMember removes member from the named set and reports
	// whether it was present.
	RemoveMember(ctx context.Context, set, member string) (bool, error)

	// Members returns the members of the named set, in unspecified
	// order. An absent set is empty, not an error.
	Members(ctx context.Context, set string) ([]string, error)

	// GetMulti returns the values for all keys that exist, in one
	// round trip. Missing keys are silently absent from the result.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// IncrementBelow atomically increments the named counter if its
	// current value is below max, reporting whether the increment
	// happened. An absent counter starts at zero.
	IncrementBelow(ctx context.Context, counter string, max int64) (bool, error)

	// DecrementFloor atomically decrements the named counter,
	// clamping at zero.
	DecrementFloor(ctx context.Context, counter string) error

	// Counter returns the current value of the named counter.
	Counter(ctx context.Context, counter string) (int64, error)

	// Close releases the store's resources.
	Close() error
}
