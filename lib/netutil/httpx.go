// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds small I/O helpers for talking to the messaging
// server.
//
// Response readers bound every body read at [MaxResponseSize] so a
// misbehaving server cannot exhaust memory. Message snapshots are the
// largest responses linedesk reads and stay far below the bound.
//
// [IsNormalClose] classifies the errors that end a push connection
// during ordinary teardown, which callers log quietly.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds HTTP response body reads: 32 MB.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a bounded response body and JSON-decodes it
// into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody returns an error response body for diagnostics, ignoring
// read errors.
func ErrorBody(body io.Reader) string {
	data, _ := ReadResponse(body)
	return string(data)
}
