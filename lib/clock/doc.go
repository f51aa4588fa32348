// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets the sync loops take time as a dependency.
//
// The poll loop and the push reconnect backoff read time through a
// [Clock] instead of the time package. Production wiring passes
// [Real]; tests pass a [FakeClock] and move time forward explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	adapter := transport.NewAdapter(transport.Config{Clock: fake, ...})
//	go adapter.Run(ctx)
//	fake.WaitForTimers(1)       // the poll ticker is registered
//	fake.Advance(2 * time.Second) // exactly one poll fires
//
// WaitForTimers closes the gap between a goroutine registering a
// ticker and the test advancing past it, so tests never sleep.
package clock
