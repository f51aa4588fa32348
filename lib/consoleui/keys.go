// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the console's key bindings. Bindings other than
// Send, FocusToggle, and ForceQuit apply only while the conversation
// list or chat pane has focus; the compose line takes every other key
// as text.
type KeyMap struct {
	// Navigation: list cursor movement or chat scrolling depending on
	// focus.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Open selects the conversation under the list cursor.
	Open key.Binding

	// Deselect clears the selection, or the filter when one is set.
	Deselect key.Binding

	FocusToggle key.Binding
	Compose     key.Binding

	FilterActivate key.Binding

	// Send submits the compose line.
	Send key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "l", "right"),
		key.WithHelp("enter", "open"),
	),
	Deselect: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "close"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	Compose: key.NewBinding(
		key.WithKeys("i", "r"),
		key.WithHelp("i", "reply"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
