// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package unread counts unseen incoming messages per conversation and
// remembers which conversation is on screen.
package unread

import (
	"maps"
	"slices"
)

// Tracker is the unread state. Counts are never negative. Selecting a
// conversation resets its count; incoming messages count only while
// their conversation is not selected. Not safe for concurrent use.
type Tracker struct {
	selected string
	counts   map[string]int
}

// New returns a tracker with nothing selected.
func New() *Tracker {
	return &Tracker{counts: make(map[string]int)}
}

// OnIncoming records an incoming message for conversationID. It
// reports whether the count changed (false while the conversation is
// selected).
func (tracker *Tracker) OnIncoming(conversationID string) bool {
	if conversationID == tracker.selected {
		return false
	}
	tracker.counts[conversationID]++
	return true
}

// OnSelect makes conversationID the selection and zeroes its count.
// An empty id clears the selection. Selecting a conversation that has
// never been seen is allowed and creates no entry.
func (tracker *Tracker) OnSelect(conversationID string) {
	tracker.selected = conversationID
	delete(tracker.counts, conversationID)
}

// Count returns the unread count; 0 for unknown conversations.
func (tracker *Tracker) Count(conversationID string) int {
	return tracker.counts[conversationID]
}

// Selected returns the selected conversation, or "".
func (tracker *Tracker) Selected() string { return tracker.selected }

// Total returns the sum of all counts.
func (tracker *Tracker) Total() int {
	total := 0
	for _, count := range tracker.counts {
		total += count
	}
	return total
}

// Counts returns a copy of the non-zero counts.
func (tracker *Tracker) Counts() map[string]int {
	return maps.Clone(tracker.counts)
}

// Unread returns the conversations with a non-zero count, sorted.
func (tracker *Tracker) Unread() []string {
	return slices.Sorted(maps.Keys(tracker.counts))
}
