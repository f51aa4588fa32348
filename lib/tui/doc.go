// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal building blocks of the linedesk
// console: the color theme, a scrollbar renderer, fuzzy matching for
// the conversation filter, and the activity glow that marks
// conversations with recent traffic.
//
// Layout and event handling live in [consoleui]; this package holds
// the pieces that do not depend on bubbletea's update loop.
package tui
