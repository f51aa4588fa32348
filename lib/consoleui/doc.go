// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package consoleui is the operator console: a bubbletea program with
// a conversation list on the left, the selected conversation's chat on
// the right, and a compose line below.
//
// The engine drives the console through [ProgramSink], which turns
// view updates into bubbletea messages. User actions flow back through
// a [Controller]: selecting a conversation and sending a reply. Log
// records at or above the configured level appear briefly in the
// status bar through [TUILogHandler].
//
// The console never reads engine state directly. Everything it shows
// comes from the frames, badges, and directory snapshots delivered to
// the sink, so the engine remains the single owner of message state.
package consoleui
