// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.waitersChanged = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. After, AfterFunc, and
// NewTicker register pending waiters; Advance fires every waiter whose
// deadline falls within the advanced window, in deadline order.
//
// AfterFunc callbacks run synchronously inside Advance. Do not call
// Advance from within a callback.
type FakeClock struct {
	mu             sync.Mutex
	current        time.Time
	waiters        []*fakeWaiter
	waitersChanged *sync.Cond
}

type fakeWaiter struct {
	deadline time.Time

	// channel receives the fire time for After and Ticker waiters;
	// nil for AfterFunc waiters.
	channel chan time.Time

	// callback is invoked during Advance for AfterFunc waiters; nil
	// otherwise.
	callback func()

	// interval is non-zero for ticker waiters, which reschedule at
	// deadline + interval after firing.
	interval time.Duration

	stopped bool
	fired   bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock advances past
// duration d. If d <= 0 the channel receives immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	c.waitersChanged.Broadcast()
	return channel
}

// AfterFunc schedules f to run when the clock advances past d. If
// d <= 0, f runs synchronously before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()

	if d <= 0 {
		c.mu.Unlock()
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		callback: f,
	}
	c.waiters = append(c.waiters, waiter)
	c.waitersChanged.Broadcast()
	c.mu.Unlock()

	return &Timer{
		stopFunc: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if waiter.stopped || waiter.fired {
				return false
			}
			waiter.stopped = true
			return true
		},
	}
}

// NewTicker returns a ticker that fires each time the clock advances
// past another multiple of d. Panics if d <= 0, matching
// time.NewTicker.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  channel,
		interval: d,
	}
	c.waiters = append(c.waiters, waiter)
	c.waitersChanged.Broadcast()

	return &Ticker{
		C: channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			waiter.stopped = true
		},
	}
}

// Advance moves the fake time forward by d, firing every pending
// waiter whose deadline falls within the window, in deadline order.
// Tickers fire once per elapsed interval and reschedule.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.current.Add(d)

	for {
		next := c.nextDeadlineLocked(target)
		if next == nil {
			break
		}
		c.current = next.deadline
		c.fireLocked(next)
	}

	c.current = target
}

// nextDeadlineLocked returns the unfired waiter with the earliest
// deadline at or before target, or nil when none remain.
func (c *FakeClock) nextDeadlineLocked(target time.Time) *fakeWaiter {
	var earliest *fakeWaiter
	for _, waiter := range c.waiters {
		if waiter.stopped || waiter.fired {
			continue
		}
		if waiter.deadline.After(target) {
			continue
		}
		if earliest == nil || waiter.deadline.Before(earliest.deadline) {
			earliest = waiter
		}
	}
	return earliest
}

func (c *FakeClock) fireLocked(waiter *fakeWaiter) {
	switch {
	case waiter.interval > 0:
		// Ticker: non-blocking send (capacity 1, drop when the
		// consumer is behind), then reschedule.
		select {
		case waiter.channel <- c.current:
		default:
		}
		waiter.deadline = waiter.deadline.Add(waiter.interval)
	case waiter.callback != nil:
		waiter.fired = true
		callback := waiter.callback
		c.mu.Unlock()
		callback()
		c.mu.Lock()
	default:
		waiter.fired = true
		waiter.channel <- c.current
	}
}

// WaitForTimers blocks until at least n live waiters (timers, tickers,
// or pending After channels) are registered. Call this before Advance
// when the waiters are registered by another goroutine.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.liveWaitersLocked() < n {
		c.waitersChanged.Wait()
	}
}

func (c *FakeClock) liveWaitersLocked() int {
	live := 0
	for _, waiter := range c.waiters {
		if !waiter.stopped && !waiter.fired {
			live++
		}
	}
	return live
}

// Deadlines returns the pending deadlines in ascending order. Test
// diagnostic helper.
func (c *FakeClock) Deadlines() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadlines := make([]time.Time, 0, len(c.waiters))
	for _, waiter := range c.waiters {
		if !waiter.stopped && !waiter.fired {
			deadlines = append(deadlines, waiter.deadline)
		}
	}
	sort.Slice(deadlines, func(i, j int) bool { return deadlines[i].Before(deadlines[j]) })
	return deadlines
}
