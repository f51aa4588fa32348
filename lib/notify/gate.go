// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify decides which notices raise an alert.
//
// A [Gate] keeps a watermark: the timestamp of the newest notice it
// has let through. A notice fires when it is newer than the watermark,
// or when it arrives in the initial batch (the first successful poll
// after startup), where every notice fires once. Re-deliveries of
// older notices on later polls stay silent. The watermark only moves
// forward and moves whether or not the alert itself succeeds.
package notify

import "github.com/linedesk/linedesk/lib/chat"

// Gate holds the notification watermark. The zero value has never
// fired. Not safe for concurrent use.
type Gate struct {
	watermark int64
	fired     bool
}

// Evaluate reports whether message should raise an alert, advancing
// the watermark if so. Only notices can fire.
func (gate *Gate) Evaluate(message chat.Message, initialBatch bool) bool {
	if message.Kind != chat.KindNotify {
		return false
	}
	if !initialBatch && gate.fired && message.Timestamp <= gate.watermark {
		return false
	}
	if !gate.fired || message.Timestamp > gate.watermark {
		gate.watermark = message.Timestamp
	}
	gate.fired = true
	return true
}

// Watermark returns the newest notice timestamp that fired, and
// whether any has.
func (gate *Gate) Watermark() (int64, bool) {
	return gate.watermark, gate.fired
}
