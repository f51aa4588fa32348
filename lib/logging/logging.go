// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the slog handlers shared by linedesk
// binaries: a stderr logger that picks text or JSON output by whether
// stderr is a terminal, a JSON file handler for post-mortem logs, and
// a fanout that feeds several handlers at once.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger writing to stderr.
// When stderr is a terminal it uses slog.TextHandler for
// human-readable output; otherwise slog.JSONHandler.
func NewCommandLogger(level slog.Leveler) *slog.Logger {
	return slog.New(NewStreamHandler(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd()))))
}

// NewStreamHandler returns a text handler when terminal is true and a
// JSON handler otherwise.
func NewStreamHandler(w io.Writer, level slog.Leveler, terminal bool) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

// OpenFile creates a JSON handler writing records at or above level
// to path. The file is created or truncated. The returned function
// closes it.
func OpenFile(path string, level slog.Leveler) (slog.Handler, func() error, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, file.Close, nil
}

// Fanout is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for its level.
type Fanout []slog.Handler

// Enabled implements slog.Handler.
func (handlers Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler. Every enabled handler sees the
// record even when an earlier one fails.
func (handlers Fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (handlers Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(Fanout, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

// WithGroup implements slog.Handler.
func (handlers Fanout) WithGroup(name string) slog.Handler {
	derived := make(Fanout, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
