// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/view"
)

// ViewSink receives presentation state. Calls come from the engine
// goroutine and must not block for long.
type ViewSink interface {
	// Render replaces the displayed message list.
	Render(frame view.Frame)

	// SetUnreadBadge is called after every change to a
	// conversation's unread count.
	SetUnreadBadge(conversationID string, count int)

	// SetDirectory is called when the user directory changes. The
	// slice is sorted by name and owned by the receiver.
	SetDirectory(users []chat.User)
}

// AlertSink receives user-facing alerts. Errors are logged by the
// engine and otherwise ignored.
type AlertSink interface {
	// Alert announces a notice.
	Alert(text string) error

	// Chime signals a new unread message in a background
	// conversation.
	Chime(conversationID string) error
}

// Recorder receives every event before it is applied.
type Recorder interface {
	Record(event Event) error
}

// discardSink is used for unset sinks.
type discardSink struct{}

func (discardSink) Render(view.Frame) {}
func (discardSink) SetUnreadBadge(string, int) {}
func (discardSink) SetDirectory([]chat.User) {}
func (discardSink) Alert(string) error { return nil }
func (discardSink) Chime(string) error { return nil }
