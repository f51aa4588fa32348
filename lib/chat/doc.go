// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat defines the message model shared by every linedesk
// component: [Message], its closed [Kind] variant, and the read-only
// user [Directory] that maps conversation ids to display names.
//
// A conversation is identified by the counterpart user's id. Every
// message belongs to exactly one conversation except notices
// ([KindNotify]), which are broadcast and appear in every
// conversation's view.
//
// Timestamps are milliseconds since the Unix epoch. The server sends
// float seconds; conversion happens once at the wire boundary in the
// messaging package.
package chat
