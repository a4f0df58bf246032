// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that
// timer-driven components can be tested deterministically.
//
// Production code accepts a Clock instead of calling time.Now,
// time.After, time.AfterFunc, or time.NewTicker directly. Real()
// delegates to the standard time package; Fake() stands still until
// Advance is called.
//
// The eviction sweep is the main consumer: it ticks on a Clock, and
// its tests register the ticker with WaitForTimers before advancing
// the fake clock past the sweep interval. That removes the race
// between ticker registration and time advancement that plagues
// tests built on time.Sleep.
package clock
