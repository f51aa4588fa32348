// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/view"
)

// frameMsg carries a rendered frame from the engine.
type frameMsg struct {
	frame view.Frame
}

// unreadMsg carries one conversation's unread count.
type unreadMsg struct {
	conversationID string
	count          int
}

// directoryMsg carries the full directory, sorted for display.
type directoryMsg struct {
	users []chat.User
}

// ProgramSink implements the engine's view sink by forwarding each
// update into a bubbletea program. Updates before SetProgram are
// dropped, so start the engine only after the program is set.
type ProgramSink struct {
	program atomic.Pointer[tea.Program]
}

// NewProgramSink returns a sink with no program attached.
func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

// SetProgram attaches the program. Safe to call from any goroutine.
func (sink *ProgramSink) SetProgram(program *tea.Program) {
	sink.program.Store(program)
}

func (sink *ProgramSink) send(message tea.Msg) {
	if program := sink.program.Load(); program != nil {
		program.Send(message)
	}
}

// Render delivers a frame. The frame's message slice is shared with
// the engine's snapshot and must not be modified; the model only
// reads it.
func (sink *ProgramSink) Render(frame view.Frame) {
	sink.send(frameMsg{frame: frame})
}

// SetUnreadBadge delivers one conversation's unread count.
func (sink *ProgramSink) SetUnreadBadge(conversationID string, count int) {
	sink.send(unreadMsg{conversationID: conversationID, count: count})
}

// SetDirectory delivers the directory.
func (sink *ProgramSink) SetDirectory(users []chat.User) {
	sink.send(directoryMsg{users: users})
}
