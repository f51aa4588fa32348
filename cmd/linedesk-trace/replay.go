// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/engine/trace"
	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/view"
)

// replaySink logs what the console would have shown.
type replaySink struct {
	logger  *slog.Logger
	renders int
	alerts  int
	chimes  int
}

func (sink *replaySink) Render(frame view.Frame) {
	sink.renders++
	sink.logger.Debug("render", "conversation", frame.Conversation, "messages", len(frame.Messages))
}

func (sink *replaySink) SetUnreadBadge(conversationID string, count int) {
	sink.logger.Debug("unread badge", "conversation", conversationID, "count", count)
}

func (sink *replaySink) SetDirectory(users []chat.User) {
	sink.logger.Debug("directory", "users", len(users))
}

func (sink *replaySink) Alert(text string) error {
	sink.alerts++
	sink.logger.Info("alert", "text", text)
	return nil
}

func (sink *replaySink) Chime(conversationID string) error {
	sink.chimes++
	sink.logger.Debug("chime", "conversation", conversationID)
	return nil
}

// replayReport is the YAML summary printed after a replay.
type replayReport struct {
	Events    int            `yaml:"events"`
	Renders   int            `yaml:"renders"`
	Alerts    int            `yaml:"alerts"`
	Chimes    int            `yaml:"chimes"`
	Selected  string         `yaml:"selected"`
	Messages  map[string]int `yaml:"messages"`
	Notices   int            `yaml:"notices"`
	Unread    map[string]int `yaml:"unread,omitempty"`
	Watermark string         `yaml:"watermark,omitempty"`
}

func replay(r io.Reader, stdout io.Writer, logger *slog.Logger) error {
	sink := &replaySink{logger: logger}
	replayed := engine.New(engine.Config{
		View:   sink,
		Alerts: sink,
		Logger: logger,
	})

	count, err := trace.Replay(r, replayed.Apply)
	if err != nil {
		logger.Warn("trace ended early", "applied", count, "error", err)
	}

	state := replayed.State()
	report := replayReport{
		Events:   count,
		Renders:  sink.renders,
		Alerts:   sink.alerts,
		Chimes:   sink.chimes,
		Selected: state.Selected,
		Messages: state.Messages,
		Notices:  state.Notices,
		Unread:   state.Unread,
	}
	if state.Alerted {
		report.Watermark = time.UnixMilli(state.Watermark).UTC().Format(time.RFC3339Nano)
	}

	encoder := yaml.NewEncoder(stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return encoder.Close()
}
