// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"errors"
	"io"
	"net"

	"nhooyr.io/websocket"
)

// IsNormalClose reports whether err ended a push connection in an
// ordinary way: EOF, a closed connection, a cancelled context, or a
// websocket close frame with status 1000 (normal) or 1001 (going
// away).
func IsNormalClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
