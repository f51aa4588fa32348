// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAdvances(t *testing.T) {
	fake := Fake(epoch)
	fake.Advance(5 * time.Second)
	if got, want := fake.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestFakeAfter(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(3 * time.Second)

	fake.Advance(2 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case <-channel:
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if fake.PendingCount() != 0 {
		t.Fatalf("PendingCount = %d after one-shot fired, want 0", fake.PendingCount())
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(epoch)
	for _, d := range []time.Duration{0, -time.Second} {
		select {
		case <-fake.After(d):
		default:
			t.Fatalf("After(%v) should deliver immediately", d)
		}
	}
}

func TestFakeTickerDropsWhenFull(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(2 * time.Second)
	defer ticker.Stop()

	// Three periods elapse but the buffer holds one tick.
	fake.Advance(6 * time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire")
	}
	select {
	case <-ticker.C:
		t.Fatal("ticker queued more than one tick")
	default:
	}

	fake.Advance(2 * time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("ticker did not fire on the next period")
	}
}

func TestFakeTickerStopAndReset(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(time.Second)
	ticker.Stop()
	if fake.PendingCount() != 0 {
		t.Fatalf("PendingCount = %d after Stop, want 0", fake.PendingCount())
	}

	fake.Advance(5 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}

	ticker.Reset(3 * time.Second)
	fake.Advance(2 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("reset ticker fired early")
	default:
	}
	fake.Advance(time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("reset ticker did not fire")
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-fake.After(time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(time.Second)
	<-done
}
