// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"nhooyr.io/websocket"
)

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestDecodeResponse(t *testing.T) {
	var result struct {
		Name string `json:"name"`
	}
	if err := DecodeResponse(strings.NewReader(`{"name":"Sato"}`), &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "Sato" {
		t.Fatalf("name = %q, want Sato", result.Name)
	}

	if err := DecodeResponse(strings.NewReader(`<html>`), &result); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
	if err := DecodeResponse(failReader{}, &result); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestReadResponseBounded(t *testing.T) {
	body := io.MultiReader(bytes.NewReader(make([]byte, MaxResponseSize)), strings.NewReader("overflow"))
	data, err := ReadResponse(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int64(len(data)) != MaxResponseSize {
		t.Fatalf("read %d bytes, want %d", len(data), MaxResponseSize)
	}
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(strings.NewReader("bad gateway")); got != "bad gateway" {
		t.Fatalf("ErrorBody = %q", got)
	}
	if got := ErrorBody(failReader{}); got != "" {
		t.Fatalf("ErrorBody on failing reader = %q, want empty", got)
	}
}

func TestIsNormalClose(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped closed", fmt.Errorf("read: %w", net.ErrClosed), true},
		{"cancelled", context.Canceled, true},
		{"normal closure", websocket.CloseError{Code: websocket.StatusNormalClosure}, true},
		{"going away", websocket.CloseError{Code: websocket.StatusGoingAway}, true},
		{"policy violation", websocket.CloseError{Code: websocket.StatusPolicyViolation}, false},
		{"other", errors.New("tls handshake failure"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsNormalClose(test.err); got != test.want {
				t.Errorf("IsNormalClose(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
