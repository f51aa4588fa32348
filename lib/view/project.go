// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package view turns a store snapshot and a selection into the
// ordered list the console draws.
//
// [Project] is a pure function: the same snapshot and selection
// always yield an equal [Frame], so the engine can re-render as often
// as it likes without the picture drifting.
package view

import (
	"slices"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/msgstore"
)

// Frame is what the render sink receives.
type Frame struct {
	// Conversation is the selected conversation, or "" when nothing
	// is selected.
	Conversation string

	// Messages are the conversation's messages and every notice,
	// ordered by timestamp then arrival. Nil when nothing is
	// selected.
	Messages []chat.Message
}

// Placeholder reports whether the frame should show the "nothing
// selected" placeholder instead of a message list.
func (frame Frame) Placeholder() bool { return frame.Conversation == "" }

// Equal reports whether two frames render identically.
func (frame Frame) Equal(other Frame) bool {
	return frame.Conversation == other.Conversation &&
		slices.Equal(frame.Messages, other.Messages)
}

// Project builds the frame for selected.
func Project(snapshot msgstore.Snapshot, selected string) Frame {
	if selected == "" {
		return Frame{}
	}
	merged := msgstore.Merge(snapshot.Conversation(selected), snapshot.Notices())
	return Frame{Conversation: selected, Messages: msgstore.Messages(merged)}
}
