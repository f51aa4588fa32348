// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	// Summary is the one-line form shown in the status bar.
	Summary string

	// Structured is the full JSON-encoded record.
	Structured string

	Level slog.Level
}

// logRecordFadeMsg clears a log record from the status bar. Sequence
// identifies the record it fades, so an older fade does not clear a
// newer record.
type logRecordFadeMsg struct {
	sequence int
}

// logRecordFadeDelay is how long a log record stays in the status bar.
const logRecordFadeDelay = 5 * time.Second

// TUILogHandler is a slog.Handler that routes records into the
// bubbletea program as messages. Records below the configured level
// are dropped, as are records arriving before SetProgram.
//
// Handlers derived via WithAttrs/WithGroup share the program pointer,
// so one SetProgram call reaches all of them.
type TUILogHandler struct {
	level   slog.Leveler
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	groups  []string
}

// NewTUILogHandler creates a handler delivering records at or above
// level.
func NewTUILogHandler(level slog.Leveler) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program that receives log records.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled implements slog.Handler.
func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle implements slog.Handler.
func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	program.Send(handler.format(record))
	return nil
}

func (handler *TUILogHandler) format(record slog.Record) logRecordMsg {
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}

	var parts []string
	fields := map[string]any{
		"time":  record.Time.Format(time.RFC3339),
		"level": record.Level.String(),
		"msg":   record.Message,
	}
	collect := func(attr slog.Attr) bool {
		name := prefix + attr.Key
		parts = append(parts, fmt.Sprintf("%s=%s", name, attr.Value))
		fields[name] = attr.Value.String()
		return true
	}
	for _, attr := range handler.attrs {
		collect(attr)
	}
	record.Attrs(collect)

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	structured, err := json.Marshal(fields)
	if err != nil {
		structured = fmt.Appendf(nil, `{"msg":%q,"error":"marshal failed"}`, record.Message)
	}
	return logRecordMsg{Summary: summary, Structured: string(structured), Level: record.Level}
}

// WithAttrs implements slog.Handler.
func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append(slices.Clone(handler.attrs), attrs...),
		groups:  slices.Clone(handler.groups),
	}
}

// WithGroup implements slog.Handler.
func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   slices.Clone(handler.attrs),
		groups:  append(slices.Clone(handler.groups), name),
	}
}
