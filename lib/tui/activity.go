// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"
)

// ActivityDecayDuration is how long a conversation glows after a new
// message. Heat starts at 1.0 and decays linearly to 0.0.
const ActivityDecayDuration = 5 * time.Second

// ActivityTickInterval is the re-render interval while any
// conversation is glowing.
const ActivityTickInterval = 100 * time.Millisecond

// ActivityTracker maps conversation ids to the time of their last
// message for animated highlighting in the conversation list.
type ActivityTracker struct {
	ignitions map[string]time.Time
}

// NewActivityTracker creates an empty tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{ignitions: make(map[string]time.Time)}
}

// Ignite records activity for a conversation, restarting its decay.
func (tracker *ActivityTracker) Ignite(conversationID string, now time.Time) {
	tracker.ignitions[conversationID] = now
}

// Heat returns the current intensity for a conversation: 1.0 at
// ignition, decaying to 0.0 over [ActivityDecayDuration].
func (tracker *ActivityTracker) Heat(conversationID string, now time.Time) float64 {
	ignition, exists := tracker.ignitions[conversationID]
	if !exists {
		return 0.0
	}
	elapsed := now.Sub(ignition)
	if elapsed >= ActivityDecayDuration {
		return 0.0
	}
	return 1.0 - float64(elapsed)/float64(ActivityDecayDuration)
}

// HasHot reports whether any conversation still glows, meaning the
// tick timer should keep running. Fully decayed entries are dropped.
func (tracker *ActivityTracker) HasHot(now time.Time) bool {
	hot := false
	for conversationID, ignition := range tracker.ignitions {
		if now.Sub(ignition) < ActivityDecayDuration {
			hot = true
			continue
		}
		delete(tracker.ignitions, conversationID)
	}
	return hot
}
