// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fake is an in-memory Runtime for tests. Launching records the spec
// and creates a live instance; tests end a sandbox with [Fake.Exit]
// or observe teardown through [Fake.Stops].
type Fake struct {
	// LaunchErr, when set, makes every Launch fail with this error.
	LaunchErr error

	// StopErr, when set, makes every Stop of a live sandbox fail
	// with this error. The sandbox stays live.
	StopErr error

	// RejectPersistent makes Launch fail with ErrUnsupported for
	// specs requesting a persistent workspace, mimicking a host
	// without project quota support.
	RejectPersistent bool

	mu        sync.Mutex
	launched  []LaunchSpec
	stops     []string
	instances map[string]*fakeInstance
}

type fakeInstance struct {
	name   string
	exited chan struct{}
}

func (i *fakeInstance) Name() string            { return i.name }
func (i *fakeInstance) Exited() <-chan struct{} { return i.exited }

// NewFake creates an empty fake runtime.
func NewFake() *Fake {
	return &Fake{instances: make(map[string]*fakeInstance)}
}

func (f *Fake) Launch(ctx context.Context, spec LaunchSpec) (Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.LaunchErr != nil {
		return nil, f.LaunchErr
	}
	if f.RejectPersistent && spec.PersistentWorkspace {
		return nil, fmt.Errorf("persistent workspace for %s: %w", spec.Name, ErrUnsupported)
	}
	if _, exists := f.instances[spec.Name]; exists {
		return nil, fmt.Errorf("sandbox %s already running", spec.Name)
	}

	instance := &fakeInstance{name: spec.Name, exited: make(chan struct{})}
	f.instances[spec.Name] = instance
	f.launched = append(f.launched, spec)
	return instance, nil
}

func (f *Fake) Inspect(ctx context.Context, name string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.instances[name]; !ok {
		return Status{}, fmt.Errorf("inspecting %s: %w", name, ErrGone)
	}
	return Status{Name: name, PID: 1, Running: true}, nil
}

func (f *Fake) Stop(ctx context.Context, name string, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops = append(f.stops, name)
	instance, ok := f.instances[name]
	if !ok {
		return nil
	}
	if f.StopErr != nil {
		return f.StopErr
	}
	delete(f.instances, name)
	close(instance.exited)
	return nil
}

// Exit ends a live sandbox as if its process exited on its own,
// closing the instance's Exited channel. Exiting an absent sandbox is
// a no-op.
func (f *Fake) Exit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	instance, ok := f.instances[name]
	if !ok {
		return
	}
	delete(f.instances, name)
	close(instance.exited)
}

// Launched returns the specs passed to successful Launch calls, in
// order.
func (f *Fake) Launched() []LaunchSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]LaunchSpec, len(f.launched))
	copy(out, f.launched)
	return out
}

// Stops returns the names passed to Stop, in order, including stops
// of absent sandboxes.
func (f *Fake) Stops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.stops))
	copy(out, f.stops)
	return out
}

// Live reports whether a sandbox is currently running.
func (f *Fake) Live(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.instances[name]
	return ok
}
