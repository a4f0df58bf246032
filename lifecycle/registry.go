// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/warren-foundation/warren/lib/clock"
	"github.com/warren-foundation/warren/lib/codec"
	"github.com/warren-foundation/warren/statestore"
)

// sessionSet is the store set holding active session identifiers.
const sessionSet = "sessions"

func sessionKey(id string) string { return "session/" + id }

// Registry is the single source of truth for which sessions exist.
// Records and set membership are kept in the state store; Delete also
// releases the session's capacity slot, gated on the atomic
// membership removal so concurrent deletion triggers release at most
// once.
type Registry struct {
	store     statestore.Store
	admission *Admission
	clock     clock.Clock
	logger    *slog.Logger
}

// NewRegistry creates a registry over the given store. Deletions
// release capacity through admission.
func NewRegistry(store statestore.Store, admission *Admission, clk clock.Clock, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, admission: admission, clock: clk, logger: logger}
}

// Put persists a session record and marks it active. Callers must
// hold a granted capacity slot for it.
func (r *Registry) Put(ctx context.Context, session *Session) error {
	encoded, err := codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	if err := r.store.Set(ctx, sessionKey(session.ID), encoded); err != nil {
		return fmt.Errorf("storing session %s: %w", session.ID, err)
	}
	if err := r.store.AddMember(ctx, sessionSet, session.ID); err != nil {
		return fmt.Errorf("registering session %s: %w", session.ID, err)
	}
	return nil
}

// Get returns the session record for id, or ErrSessionNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.store.Get(ctx, sessionKey(id))
	if errors.Is(err, statestore.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}
	var session Session
	if err := codec.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &session, nil
}

// Touch advances a session's LastActive to now and returns the new
// timestamp. Touching an absent session returns ErrSessionNotFound.
func (r *Registry) Touch(ctx context.Context, id string) (int64, error) {
	session, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	now := r.clock.Now().UnixMilli()
	session.LastActive = now
	encoded, err := codec.Marshal(session)
	if err != nil {
		return 0, fmt.Errorf("encoding session %s: %w", id, err)
	}
	if err := r.store.Set(ctx, sessionKey(id), encoded); err != nil {
		return 0, fmt.Errorf("storing session %s: %w", id, err)
	}

	// The write may have raced a concurrent Delete and resurrected
	// the record. If the id has left the active set, take the record
	// back out; otherwise it would be invisible to ListAll (and the
	// sweep) but answer Get forever.
	members, err := r.store.Members(ctx, sessionSet)
	if err != nil {
		return 0, fmt.Errorf("checking session %s membership: %w", id, err)
	}
	if !slices.Contains(members, id) {
		if err := r.store.Delete(ctx, sessionKey(id)); err != nil {
			return 0, fmt.Errorf("deleting session %s: %w", id, err)
		}
		return 0, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return now, nil
}

// Delete removes a session and releases its capacity slot. It is
// idempotent: explicit deletes, the self-exit watcher, and the
// eviction sweep may all race here, and only the caller that wins the
// membership removal releases the slot. Deleting an absent session
// succeeds without touching the counter.
func (r *Registry) Delete(ctx context.Context, id string) error {
	removed, err := r.store.RemoveMember(ctx, sessionSet, id)
	if err != nil {
		return fmt.Errorf("deregistering session %s: %w", id, err)
	}
	deleteErr := r.store.Delete(ctx, sessionKey(id))
	if removed {
		// The winner of the membership removal owns the release, and
		// it must happen now: a retry after any failure sees
		// removed == false and will never release. Detached from ctx
		// for the same reason.
		if err := r.admission.Release(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("session %s: %w", id, err)
		}
	}
	if deleteErr != nil {
		return fmt.Errorf("deleting session %s: %w", id, deleteErr)
	}
	return nil
}

// ListAll returns every active session in one batched read: the
// membership set, then all records in a single multi-get. A record
// that vanished between the two reads lost a race with a concurrent
// delete and is dropped, not surfaced as an error.
func (r *Registry) ListAll(ctx context.Context) ([]*Session, error) {
	ids, err := r.store.Members(ctx, sessionSet)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	records, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetching session records: %w", err)
	}

	sessions := make([]*Session, 0, len(records))
	for _, id := range ids {
		raw, ok := records[sessionKey(id)]
		if !ok {
			continue
		}
		var session Session
		if err := codec.Unmarshal(raw, &session); err != nil {
			r.logger.Warn("skipping undecodable session record", "session_id", id, "error", err)
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}
