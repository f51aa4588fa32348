// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine serializes every state change of the console behind
// one intake queue.
//
// The push channel, the poll loop, and the operator's selection all
// arrive as typed [Event] values. A single goroutine ([Engine.Run])
// drains the queue and applies each event to completion before
// taking the next: it ingests messages into the store, updates the
// unread tracker, asks the notification gate whether a notice should
// alert, and re-projects the view. Because nothing else touches the
// store, tracker, or gate, none of them need locks.
//
// Results leave through two sinks. A [ViewSink] receives frames,
// unread badges, and directory changes; an [AlertSink] receives
// notice alerts and the unread chime. Sink errors are logged and
// never roll back state.
//
// [Engine.Apply] runs the same transition synchronously. Tests and
// trace replay use it in place of Run.
package engine
