// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package alert gets the operator's attention from inside a terminal.
//
// Notices raise a desktop notification through the OSC 777 escape
// sequence, which most terminal emulators forward to the desktop, and
// optionally ring the bell. Unread messages in background
// conversations ring the bell only. Message text comes from end-users,
// so escape sequences and control characters are stripped before it
// reaches the terminal.
package alert

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/linedesk/linedesk/lib/tui"
)

// Title is the notification title.
const Title = "linedesk"

// maxBodyWidth bounds the notification body in terminal cells.
const maxBodyWidth = 200

// ErrNoTerminal is returned when alerts are enabled but the output is
// not a terminal.
var ErrNoTerminal = errors.New("alert: output is not a terminal")

// Config selects the alert channels.
type Config struct {
	// Output receives escape sequences. Usually os.Stderr, which
	// shares the terminal with the console without going through its
	// renderer.
	Output io.Writer

	// Terminal reports whether Output is a terminal.
	Terminal bool

	Desktop       bool
	Bell          bool
	ChimeOnUnread bool
}

// Alerter implements the engine's alert sink.
type Alerter struct {
	writer io.Writer
	output *termenv.Output
	config Config
}

// New creates an Alerter.
func New(config Config) *Alerter {
	alerter := &Alerter{config: config}
	if config.Output != nil {
		alerter.writer = config.Output
		alerter.output = termenv.NewOutput(config.Output)
	}
	return alerter
}

// Alert announces a notice.
func (alerter *Alerter) Alert(text string) error {
	if !alerter.config.Desktop && !alerter.config.Bell {
		return nil
	}
	if err := alerter.ready(); err != nil {
		return err
	}
	if alerter.config.Desktop {
		alerter.output.Notify(Title, Sanitize(text))
	}
	if alerter.config.Bell {
		return alerter.ring()
	}
	return nil
}

// Chime rings the bell for an unread message.
func (alerter *Alerter) Chime(conversationID string) error {
	if !alerter.config.ChimeOnUnread {
		return nil
	}
	if err := alerter.ready(); err != nil {
		return err
	}
	return alerter.ring()
}

func (alerter *Alerter) ready() error {
	if alerter.writer == nil || !alerter.config.Terminal {
		return ErrNoTerminal
	}
	return nil
}

func (alerter *Alerter) ring() error {
	if _, err := io.WriteString(alerter.writer, "\a"); err != nil {
		return fmt.Errorf("alert: ringing bell: %w", err)
	}
	return nil
}

// Sanitize makes end-user text safe to embed in an escape sequence:
// ANSI sequences are removed, other control characters become spaces,
// and the result is truncated to a single bounded line.
func Sanitize(text string) string {
	text = tui.PlainLine(text)
	text = strings.Join(strings.Fields(text), " ")
	return ansi.Truncate(text, maxBodyWidth, "…")
}
