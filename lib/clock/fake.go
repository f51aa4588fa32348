// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// It is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	changed *sync.Cond
	now     time.Time
	pending []*pendingTick
}

// pendingTick is one registered After or ticker deadline. Tickers
// carry a non-zero period and are rescheduled after each firing.
type pendingTick struct {
	deadline time.Time
	period   time.Duration
	channel  chan time.Time
	stopped  bool
}

// Fake returns a FakeClock reading initial until advanced.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{now: initial}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// Now returns the fake time.
func (fake *FakeClock) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// After registers a one-shot deadline d from now.
func (fake *FakeClock) After(d time.Duration) <-chan time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- fake.now
		return channel
	}
	fake.register(&pendingTick{deadline: fake.now.Add(d), channel: channel})
	return channel
}

// NewTicker registers a periodic deadline.
func (fake *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()

	entry := &pendingTick{
		deadline: fake.now.Add(d),
		period:   d,
		channel:  make(chan time.Time, 1),
	}
	fake.register(entry)
	return &Ticker{
		C: entry.channel,
		stop: func() {
			fake.mu.Lock()
			defer fake.mu.Unlock()
			entry.stopped = true
			fake.pending = slices.DeleteFunc(fake.pending, func(candidate *pendingTick) bool {
				return candidate == entry
			})
		},
		reset: func(d time.Duration) {
			fake.mu.Lock()
			defer fake.mu.Unlock()
			entry.period = d
			entry.deadline = fake.now.Add(d)
			if entry.stopped {
				entry.stopped = false
				fake.register(entry)
			}
		},
	}
}

// register adds an entry and wakes WaitForTimers. Caller holds mu.
func (fake *FakeClock) register(entry *pendingTick) {
	fake.pending = append(fake.pending, entry)
	fake.changed.Broadcast()
}

// Advance moves time forward by d and fires every deadline that falls
// within the new time, earliest first. A ticker whose period fits
// several times into d fires once per period; ticks that find the
// channel full are dropped, as with time.Ticker.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mu.Lock()
	fake.now = fake.now.Add(d)
	target := fake.now

	for {
		var due *pendingTick
		for _, entry := range fake.pending {
			if entry.deadline.After(target) {
				continue
			}
			if due == nil || entry.deadline.Before(due.deadline) {
				due = entry
			}
		}
		if due == nil {
			break
		}
		select {
		case due.channel <- target:
		default:
		}
		if due.period > 0 {
			due.deadline = due.deadline.Add(due.period)
		} else {
			fake.pending = slices.DeleteFunc(fake.pending, func(candidate *pendingTick) bool {
				return candidate == due
			})
		}
	}
	fake.mu.Unlock()
}

// WaitForTimers blocks until at least n deadlines are registered.
func (fake *FakeClock) WaitForTimers(n int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for len(fake.pending) < n {
		fake.changed.Wait()
	}
}

// PendingCount reports the number of registered deadlines.
func (fake *FakeClock) PendingCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.pending)
}
