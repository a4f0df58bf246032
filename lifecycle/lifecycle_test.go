// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/warren-foundation/warren/lib/clock"
	"github.com/warren-foundation/warren/sandbox"
	"github.com/warren-foundation/warren/statestore"
)

// fixture wires a full lifecycle stack over an in-memory store, a
// fake runtime, and a fake clock.
type fixture struct {
	store       statestore.Store
	runtime     *sandbox.Fake
	clock       *clock.FakeClock
	admission   *Admission
	registry    *Registry
	provisioner *Provisioner
}

func newFixture(t *testing.T, max int64, config ProvisionerConfig) *fixture {
	t.Helper()
	return newFixtureOver(t, max, config, statestore.NewMemory())
}

// newFixtureOver builds the stack over a caller-supplied store, for
// tests that wrap the store with failure injection.
func newFixtureOver(t *testing.T, max int64, config ProvisionerConfig, store statestore.Store) *fixture {
	t.Helper()
	if config.Command == nil {
		config.Command = []string{"sleep", "infinity"}
	}
	if config.WorkspacePath == "" {
		config.WorkspacePath = "/workspace"
	}
	if config.StopGrace == 0 {
		config.StopGrace = time.Second
	}

	runtime := sandbox.NewFake()
	clk := clock.Fake(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	admission := NewAdmission(store, max)
	registry := NewRegistry(store, admission, clk, nil)
	provisioner := NewProvisioner(config, admission, registry, runtime, clk, nil)
	return &fixture{
		store:       store,
		runtime:     runtime,
		clock:       clk,
		admission:   admission,
		registry:    registry,
		provisioner: provisioner,
	}
}

func (f *fixture) slotsInUse(t *testing.T) int64 {
	t.Helper()
	count, err := f.admission.InUse(context.Background())
	if err != nil {
		t.Fatalf("InUse: %v", err)
	}
	return count
}

// waitDeleted polls until the session is absent from the registry.
// Used where deletion happens on a background goroutine (the
// self-exit watcher).
func (f *fixture) waitDeleted(t *testing.T, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, err := f.registry.Get(context.Background(), id)
		if errors.Is(err, ErrSessionNotFound) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s still present after 2s", id)
}

func TestAdmissionCapAndClamp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, ProvisionerConfig{})

	for i := 0; i < 2; i++ {
		granted, err := f.admission.Reserve(ctx)
		if err != nil || !granted {
			t.Fatalf("Reserve %d = %v, %v; want granted", i, granted, err)
		}
	}
	granted, err := f.admission.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve at cap: %v", err)
	}
	if granted {
		t.Fatal("Reserve granted a slot past the cap")
	}

	// Release more than was reserved; the counter clamps at zero.
	for i := 0; i < 5; i++ {
		if err := f.admission.Release(ctx); err != nil {
			t.Fatalf("Release %d: %v", i, err)
		}
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after over-release = %d, want 0", got)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	session := &Session{
		ID:            "aaaa",
		SandboxName:   SandboxNameFor("aaaa"),
		WorkspacePath: "/workspace",
		CreatedAt:     100,
		LastActive:    100,
	}
	if err := f.registry.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := f.registry.Get(ctx, "aaaa")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != *session {
		t.Errorf("Get = %+v, want %+v", got, session)
	}

	sessions, err := f.registry.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "aaaa" {
		t.Errorf("ListAll = %+v, want the one session", sessions)
	}

	if err := f.registry.Delete(ctx, "aaaa"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.registry.Get(ctx, "aaaa"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after delete = %v, want ErrSessionNotFound", err)
	}
}

func TestRegistryDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	granted, err := f.admission.Reserve(ctx)
	if err != nil || !granted {
		t.Fatalf("Reserve = %v, %v", granted, err)
	}
	if err := f.registry.Put(ctx, &Session{ID: "aaaa"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := f.registry.Delete(ctx, "aaaa"); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots after first delete = %d, want 0", got)
	}

	// Second delete: no error, and the slot is not released again.
	granted, err = f.admission.Reserve(ctx)
	if err != nil || !granted {
		t.Fatalf("Reserve = %v, %v", granted, err)
	}
	if err := f.registry.Delete(ctx, "aaaa"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if got := f.slotsInUse(t); got != 1 {
		t.Fatalf("slots after repeat delete = %d, want 1 (unrelated slot untouched)", got)
	}
}

func TestRegistryTouch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	if err := f.registry.Put(ctx, &Session{ID: "aaaa", LastActive: 0}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	touched, err := f.registry.Touch(ctx, "aaaa")
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if want := f.clock.Now().UnixMilli(); touched != want {
		t.Errorf("Touch returned %d, want %d", touched, want)
	}
	got, err := f.registry.Get(ctx, "aaaa")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastActive != touched {
		t.Errorf("LastActive = %d, want %d", got.LastActive, touched)
	}

	if _, err := f.registry.Touch(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Touch of absent session = %v, want ErrSessionNotFound", err)
	}
}

func TestProvisionCapacityContention(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1, ProvisionerConfig{})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		sessions  []*Session
		capDenied int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := f.provisioner.Provision(ctx)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sessions = append(sessions, session)
			case errors.Is(err, ErrCapacityExceeded):
				capDenied++
			default:
				t.Errorf("Provision: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(sessions) != 1 || capDenied != 1 {
		t.Fatalf("got %d successes and %d capacity denials, want 1 and 1", len(sessions), capDenied)
	}

	// Freeing the slot admits the next request.
	if err := f.provisioner.Deprovision(ctx, sessions[0].ID); err != nil {
		t.Fatalf("Deprovision: %v", err)
	}
	if _, err := f.provisioner.Provision(ctx); err != nil {
		t.Fatalf("Provision after delete: %v", err)
	}
}

func TestProvisionWorkspaceFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{PreferPersistentWorkspace: true})
	f.runtime.RejectPersistent = true

	session, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision with fallback: %v", err)
	}

	launched := f.runtime.Launched()
	if len(launched) != 1 {
		t.Fatalf("launched %d sandboxes, want 1", len(launched))
	}
	if launched[0].PersistentWorkspace {
		t.Error("fallback launch still requested a persistent workspace")
	}
	if launched[0].Name != session.SandboxName {
		t.Errorf("launched name %q, want %q", launched[0].Name, session.SandboxName)
	}
	if got := f.slotsInUse(t); got != 1 {
		t.Errorf("slots in use = %d, want 1", got)
	}
}

func TestProvisionFailureReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})
	f.runtime.LaunchErr = errors.New("runtime on fire")

	_, err := f.provisioner.Provision(ctx)
	if !errors.Is(err, ErrProvisionFailed) {
		t.Fatalf("Provision = %v, want ErrProvisionFailed", err)
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after failed provision = %d, want 0", got)
	}
	if sessions, _ := f.registry.ListAll(ctx); len(sessions) != 0 {
		t.Fatalf("failed provision left sessions behind: %+v", sessions)
	}
}

func TestSelfExitDeletesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	session, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	f.runtime.Exit(session.SandboxName)
	f.waitDeleted(t, session.ID)

	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after self-exit = %d, want 0", got)
	}
}

func TestDescribeDistinguishesGoneFromUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	if _, _, err := f.provisioner.Describe(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Describe of unknown session = %v, want ErrSessionNotFound", err)
	}

	// A record whose sandbox the runtime never knew: known but gone.
	if err := f.registry.Put(ctx, &Session{ID: "stale", SandboxName: "warren-stale"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := f.provisioner.Describe(ctx, "stale"); !errors.Is(err, ErrSandboxGone) {
		t.Fatalf("Describe of stale session = %v, want ErrSandboxGone", err)
	}
}

func TestDescribeTouchesLastActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	session, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	f.clock.Advance(3 * time.Minute)
	described, _, err := f.provisioner.Describe(ctx, session.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}

	// Both the stored record and the returned one carry the advanced
	// timestamp, so the caller never sees a stale LastActive.
	want := f.clock.Now().UnixMilli()
	if described.LastActive != want {
		t.Errorf("described LastActive = %d, want %d", described.LastActive, want)
	}
	got, err := f.registry.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastActive != want {
		t.Errorf("stored LastActive = %d, want %d", got.LastActive, want)
	}
}

func TestDeprovisionUnknownSession(t *testing.T) {
	f := newFixture(t, 5, ProvisionerConfig{})
	err := f.provisioner.Deprovision(context.Background(), "nope")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Deprovision = %v, want ErrSessionNotFound", err)
	}
}

func TestEvictionBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})
	threshold := 10 * time.Minute

	evictor := NewEvictor(EvictorConfig{
		Interval:      time.Minute,
		IdleThreshold: threshold,
		StopGrace:     time.Second,
	}, f.registry, f.runtime, f.clock, nil)

	atThreshold, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	// Idle exactly the threshold: survives the sweep.
	f.clock.Advance(threshold)
	evictor.sweep(ctx)
	if _, err := f.registry.Get(ctx, atThreshold.ID); err != nil {
		t.Fatalf("session idle exactly the threshold was evicted: %v", err)
	}

	// One tick past: evicted, stopped, and absent from the listing.
	f.clock.Advance(time.Millisecond)
	evictor.sweep(ctx)
	if _, err := f.registry.Get(ctx, atThreshold.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after eviction = %v, want ErrSessionNotFound", err)
	}
	sessions, err := f.registry.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("ListAll after eviction = %+v, want empty", sessions)
	}
	if stops := f.runtime.Stops(); len(stops) != 1 || stops[0] != atThreshold.SandboxName {
		t.Fatalf("runtime stops = %v, want one stop of %s", stops, atThreshold.SandboxName)
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after eviction = %d, want 0", got)
	}
}

func TestEvictionStopFailureStillDeletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	session, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	f.runtime.StopErr = errors.New("stop wedged")

	evictor := NewEvictor(EvictorConfig{
		Interval:      time.Minute,
		IdleThreshold: time.Minute,
		StopGrace:     time.Second,
	}, f.registry, f.runtime, f.clock, nil)

	f.clock.Advance(2 * time.Minute)
	evictor.sweep(ctx)

	if _, err := f.registry.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("record should be deleted despite stop failure, Get = %v", err)
	}
}

func TestEvictorRunOnTicker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, 5, ProvisionerConfig{})

	session, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	evictor := NewEvictor(EvictorConfig{
		Interval:      time.Minute,
		IdleThreshold: 10 * time.Minute,
		StopGrace:     time.Second,
	}, f.registry, f.runtime, f.clock, nil)
	go evictor.Run(ctx)
	f.clock.WaitForTimers(1)

	// Eleven one-minute ticks carry the session past its threshold.
	for i := 0; i < 11; i++ {
		f.clock.Advance(time.Minute)
	}
	f.waitDeleted(t, session.ID)

	cancel()
	select {
	case <-evictor.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("evictor did not stop after context cancellation")
	}
}

func TestDrainStopsAllSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, ProvisionerConfig{})

	names := make(map[string]bool)
	for i := 0; i < 3; i++ {
		session, err := f.provisioner.Provision(ctx)
		if err != nil {
			t.Fatalf("Provision %d: %v", i, err)
		}
		names[session.SandboxName] = true
	}

	reconciler := NewReconciler(f.registry, f.runtime, f.store, time.Second, nil)
	if err := reconciler.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	stopped := make(map[string]bool)
	for _, name := range f.runtime.Stops() {
		stopped[name] = true
	}
	for name := range names {
		if !stopped[name] {
			t.Errorf("sandbox %s was not stopped during drain", name)
		}
	}

	// The store is closed; further operations fail.
	if _, err := f.store.Members(ctx, "sessions"); err == nil {
		t.Error("store still usable after drain")
	}
}

// cancelAwareStore refuses counter decrements on a dead context, the
// way the SQLite store's pool does when Take(ctx) fails.
type cancelAwareStore struct {
	statestore.Store
}

func (s *cancelAwareStore) DecrementFloor(ctx context.Context, counter string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.DecrementFloor(ctx, counter)
}

// cancellingRuntime cancels the request context as Launch begins,
// simulating a client that disconnects mid-launch.
type cancellingRuntime struct {
	*sandbox.Fake
	cancel context.CancelFunc
}

func (r *cancellingRuntime) Launch(ctx context.Context, spec sandbox.LaunchSpec) (sandbox.Instance, error) {
	r.cancel()
	return r.Fake.Launch(ctx, spec)
}

func TestProvisionCompensatesAfterContextCancel(t *testing.T) {
	store := &cancelAwareStore{Store: statestore.NewMemory()}
	f := newFixtureOver(t, 5, ProvisionerConfig{}, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.runtime.LaunchErr = errors.New("runtime on fire")
	runtime := &cancellingRuntime{Fake: f.runtime, cancel: cancel}
	provisioner := NewProvisioner(ProvisionerConfig{
		Command:       []string{"sleep", "infinity"},
		WorkspacePath: "/workspace",
		StopGrace:     time.Second,
	}, f.admission, f.registry, runtime, f.clock, nil)

	_, err := provisioner.Provision(ctx)
	if !errors.Is(err, ErrProvisionFailed) {
		t.Fatalf("Provision = %v, want ErrProvisionFailed", err)
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after cancelled failed provision = %d, want 0: slot leaked", got)
	}
}

// flakyDeleteStore fails a number of kv deletes, then recovers.
type flakyDeleteStore struct {
	statestore.Store
	failures int
}

func (s *flakyDeleteStore) Delete(ctx context.Context, key string) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("store hiccup")
	}
	return s.Store.Delete(ctx, key)
}

func TestDeleteReleasesSlotDespiteRecordDeleteFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyDeleteStore{Store: statestore.NewMemory(), failures: 1}
	f := newFixtureOver(t, 5, ProvisionerConfig{}, store)

	granted, err := f.admission.Reserve(ctx)
	if err != nil || !granted {
		t.Fatalf("Reserve = %v, %v", granted, err)
	}
	if err := f.registry.Put(ctx, &Session{ID: "aaaa"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// The record delete fails, but the membership removal won, so
	// the slot is released anyway; a retry can never release it.
	if err := f.registry.Delete(ctx, "aaaa"); err == nil {
		t.Fatal("Delete should surface the record-delete failure")
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after failed delete = %d, want 0: slot leaked", got)
	}

	// The retry succeeds and does not release a second time.
	granted, err = f.admission.Reserve(ctx)
	if err != nil || !granted {
		t.Fatalf("Reserve = %v, %v", granted, err)
	}
	if err := f.registry.Delete(ctx, "aaaa"); err != nil {
		t.Fatalf("retried Delete: %v", err)
	}
	if got := f.slotsInUse(t); got != 1 {
		t.Fatalf("slots in use after retried delete = %d, want 1 (unrelated slot untouched)", got)
	}
}

// failingMembersStore makes the active-set read fail on demand.
type failingMembersStore struct {
	statestore.Store
	fail bool
}

func (s *failingMembersStore) Members(ctx context.Context, set string) ([]string, error) {
	if s.fail {
		return nil, errors.New("store unreachable")
	}
	return s.Store.Members(ctx, set)
}

func TestSweepAbortsOnRegistryReadFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingMembersStore{Store: statestore.NewMemory()}
	f := newFixtureOver(t, 5, ProvisionerConfig{}, store)

	session, err := f.provisioner.Provision(ctx)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	evictor := NewEvictor(EvictorConfig{
		Interval:      time.Minute,
		IdleThreshold: time.Minute,
		StopGrace:     time.Second,
	}, f.registry, f.runtime, f.clock, nil)

	// The session is well past its threshold, but the tick cannot
	// read the registry: nothing may be stopped or deleted.
	f.clock.Advance(10 * time.Minute)
	store.fail = true
	evictor.sweep(ctx)

	if stops := f.runtime.Stops(); len(stops) != 0 {
		t.Fatalf("aborted sweep stopped sandboxes: %v", stops)
	}
	store.fail = false
	if _, err := f.registry.Get(ctx, session.ID); err != nil {
		t.Fatalf("aborted sweep deleted the session: %v", err)
	}

	// Once the store recovers, the next tick evicts it.
	evictor.sweep(ctx)
	if _, err := f.registry.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after recovered sweep = %v, want ErrSessionNotFound", err)
	}
}

// touchRaceStore runs a one-shot hook just before a kv write, opening
// a deterministic window between Touch's read and its write.
type touchRaceStore struct {
	statestore.Store
	beforeSet func()
}

func (s *touchRaceStore) Set(ctx context.Context, key string, value []byte) error {
	if s.beforeSet != nil {
		hook := s.beforeSet
		s.beforeSet = nil
		hook()
	}
	return s.Store.Set(ctx, key, value)
}

func TestTouchDoesNotResurrectDeletedSession(t *testing.T) {
	ctx := context.Background()
	store := &touchRaceStore{Store: statestore.NewMemory()}
	f := newFixtureOver(t, 5, ProvisionerConfig{}, store)

	granted, err := f.admission.Reserve(ctx)
	if err != nil || !granted {
		t.Fatalf("Reserve = %v, %v", granted, err)
	}
	if err := f.registry.Put(ctx, &Session{ID: "aaaa"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A delete lands between Touch's read and its write.
	store.beforeSet = func() {
		if err := f.registry.Delete(ctx, "aaaa"); err != nil {
			t.Errorf("racing Delete: %v", err)
		}
	}
	if _, err := f.registry.Touch(ctx, "aaaa"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Touch racing a delete = %v, want ErrSessionNotFound", err)
	}

	// No orphan: the record is gone from the kv side too, and the
	// slot was released exactly once.
	if _, err := store.Get(ctx, "session/aaaa"); !errors.Is(err, statestore.ErrNotFound) {
		t.Fatalf("record after raced touch = %v, want ErrNotFound", err)
	}
	sessions, err := f.registry.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("ListAll after raced touch = %+v, want empty", sessions)
	}
	if got := f.slotsInUse(t); got != 0 {
		t.Fatalf("slots in use after raced touch = %d, want 0", got)
	}
}

func TestSandboxNameDerivation(t *testing.T) {
	id, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}
	if len(id) != 32 {
		t.Errorf("session ID length = %d, want 32", len(id))
	}

	name := SandboxNameFor(id)
	if name != SandboxNameFor(id) {
		t.Error("sandbox name derivation must be deterministic")
	}
	if name == SandboxNameFor(id+"x") {
		t.Error("distinct session IDs should yield distinct sandbox names")
	}
	const wantLen = len("warren-") + 16
	if len(name) != wantLen {
		t.Errorf("sandbox name length = %d, want %d", len(name), wantLen)
	}
}
