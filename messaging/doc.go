// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging talks to the messaging server that relays LINE
// conversations to the operator console.
//
// The server exposes two channels. [Client] covers the HTTP side: the
// user directory (GET /users) and the full message list of one
// conversation (GET /messages?user_id=...), which the poll loop uses
// as its snapshot. [Stream] covers the push side: a websocket carrying
// JSON envelopes of the form {"type": ..., "data": ...}. The server
// pushes new_message, new_user, and message_error envelopes; the
// console sends send_message envelopes for operator replies.
//
// Both sides decode wire messages into [chat.Message] at this
// boundary. Wire timestamps are float seconds and become integer
// milliseconds; the wire "type" field becomes a [chat.Kind], and an
// unknown type is a decode error rather than a silent default.
//
// Non-2xx HTTP responses are returned as [*ServerError].
// [IsServerError] tests for a specific status code.
package messaging
