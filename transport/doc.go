// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport runs the two sync channels that feed the engine.
//
// The push loop keeps one websocket open to the messaging server and
// turns each push into an engine event: a new message becomes
// [engine.PushMessage], a new profile becomes [engine.DirectoryUpdate].
// Deliveries are never retried individually. When the connection
// drops, the loop reconnects with exponential backoff and requests an
// immediate poll so anything missed while disconnected is recovered.
//
// The poll loop fetches the full message list of the selected
// conversation on a fixed interval and hands it to the engine as an
// [engine.PollSnapshot]. Nothing is fetched while no conversation is
// selected. The first snapshot delivered after startup is marked
// initial; if that poll fails, the next successful one carries the
// mark instead. A failed poll is logged and skipped with no backoff,
// and the next tick proceeds as usual.
//
// Both loops only enqueue; all state lives in the engine.
package transport
