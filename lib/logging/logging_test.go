// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStreamHandlerFormat(t *testing.T) {
	var text, structured bytes.Buffer
	slog.New(NewStreamHandler(&text, slog.LevelInfo, true)).Info("connected", "url", "ws://x")
	slog.New(NewStreamHandler(&structured, slog.LevelInfo, false)).Info("connected", "url", "ws://x")

	if !strings.Contains(text.String(), "msg=connected") {
		t.Errorf("text output = %q", text.String())
	}
	var record map[string]any
	if err := json.Unmarshal(structured.Bytes(), &record); err != nil {
		t.Fatalf("JSON output = %q: %v", structured.String(), err)
	}
	if record["url"] != "ws://x" {
		t.Errorf("record = %v", record)
	}
}

func TestFanoutRoutesByLevel(t *testing.T) {
	var warnings, everything bytes.Buffer
	logger := slog.New(Fanout{
		slog.NewJSONHandler(&warnings, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&everything, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}).With("component", "engine")

	logger.Debug("poll snapshot merged")
	logger.Warn("alert failed")

	if strings.Contains(warnings.String(), "poll snapshot merged") {
		t.Error("debug record reached the warn handler")
	}
	if !strings.Contains(warnings.String(), "alert failed") {
		t.Error("warn record missing from the warn handler")
	}
	if strings.Count(everything.String(), `"component":"engine"`) != 2 {
		t.Errorf("debug handler output = %q", everything.String())
	}

	if (Fanout{}).Enabled(t.Context(), slog.LevelError) {
		t.Error("empty fanout reports enabled")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linedesk.log")
	handler, closeFile, err := OpenFile(path, slog.LevelDebug)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	slog.New(handler).Debug("trace enabled", "path", "x.trace")
	if err := closeFile(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"trace enabled"`) {
		t.Errorf("log file = %q", data)
	}
}
