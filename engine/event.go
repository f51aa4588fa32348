// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import "github.com/linedesk/linedesk/lib/chat"

// Event is one intake item. The set of implementations is closed to
// this package.
type Event interface {
	eventName() string
}

// PushMessage is one message delivered by the push channel.
type PushMessage struct {
	Message chat.Message
}

// PollSnapshot is the full message list of one conversation returned
// by a poll. Initial marks the first successful poll after startup;
// notices in it alert even when older than the watermark.
type PollSnapshot struct {
	Scope    string
	Messages []chat.Message
	Initial  bool
}

// Select changes the conversation on screen. An empty Conversation
// clears the selection.
type Select struct {
	Conversation string
}

// DirectoryUpdate adds or replaces one user profile.
type DirectoryUpdate struct {
	User chat.User
}

// DirectoryReset replaces the whole directory.
type DirectoryReset struct {
	Users []chat.User
}

func (PushMessage) eventName() string { return "push_message" }
func (PollSnapshot) eventName() string { return "poll_snapshot" }
func (Select) eventName() string { return "select" }
func (DirectoryUpdate) eventName() string { return "directory_update" }
func (DirectoryReset) eventName() string { return "directory_reset" }

// EventName returns the snake_case name used in logs and traces.
func EventName(event Event) string { return event.eventName() }
