// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"sync"
)

// Memory is an in-process Store for tests and single-process
// development mode. A single mutex covers every operation, which
// trivially gives the counter primitives and RemoveMember the same
// atomicity the SQLite implementation gets from its transactions.
type Memory struct {
	mu       sync.Mutex
	closed   bool
	kv       map[string][]byte
	sets     map[string]map[string]struct{}
	counters map[string]int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		kv:       make(map[string][]byte),
		sets:     make(map[string]map[string]struct{}),
		counters: make(map[string]int64),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	value, ok := m.kv[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	m.kv[key] = copied
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.kv, key)
	return nil
}

func (m *Memory) AddMember(ctx context.Context, set, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	members, ok := m.sets[set]
	if !ok {
		members = make(map[string]struct{})
		m.sets[set] = members
	}
	members[member] = struct{}{}
	return nil
}

func (m *Memory) RemoveMember(ctx context.Context, set, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	members, ok := m.sets[set]
	if !ok {
		return false, nil
	}
	if _, present := members[member]; !present {
		return false, nil
	}
	delete(members, member)
	return true, nil
}

func (m *Memory) Members(ctx context.Context, set string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	members := make([]string, 0, len(m.sets[set]))
	for member := range m.sets[set] {
		members = append(members, member)
	}
	return members, nil
}

func (m *Memory) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := m.kv[key]; ok {
			copied := make([]byte, len(value))
			copy(copied, value)
			result[key] = copied
		}
	}
	return result, nil
}

func (m *Memory) IncrementBelow(ctx context.Context, counter string, max int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	if m.counters[counter] >= max {
		return false, nil
	}
	m.counters[counter]++
	return true, nil
}

func (m *Memory) DecrementFloor(ctx context.Context, counter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.counters[counter] > 0 {
		m.counters[counter]--
	}
	return nil
}

func (m *Memory) Counter(ctx context.Context, counter string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	return m.counters[counter], nil
}

// Close marks the store closed. Every subsequent operation fails with
// ErrClosed, matching the SQLite implementation's behavior after its
// pool shuts down.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
