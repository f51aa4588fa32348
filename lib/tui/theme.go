// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/linedesk/linedesk/lib/chat"
)

// Theme defines the color palette for the console. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected conversation row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	FocusBorderColor lipgloss.Color
	HelpText         lipgloss.Color

	// Unread badge.
	BadgeForeground lipgloss.Color
	BadgeBackground lipgloss.Color

	// Sender labels, by message kind.
	IncomingLabel lipgloss.Color
	OutgoingLabel lipgloss.Color
	AutoLabel     lipgloss.Color

	// Broadcast notices.
	NoticeForeground lipgloss.Color
	NoticeBorder     lipgloss.Color

	// ActivityAccent tints conversations that just received a message.
	ActivityAccent lipgloss.Color

	// SearchHighlightBackground tints characters matched by the filter.
	SearchHighlightBackground lipgloss.Color

	// Status bar log levels.
	WarnText  lipgloss.Color
	ErrorText lipgloss.Color
}

// LabelColor returns the sender label color for a message kind.
// Notices have no sender and use NoticeForeground.
func (theme Theme) LabelColor(kind chat.Kind) lipgloss.Color {
	switch kind {
	case chat.KindIncoming:
		return theme.IncomingLabel
	case chat.KindOutgoing:
		return theme.OutgoingLabel
	case chat.KindAuto:
		return theme.AutoLabel
	case chat.KindNotify:
		return theme.NoticeForeground
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	FocusBorderColor: lipgloss.Color("114"), // green
	HelpText:         lipgloss.Color("241"),

	BadgeForeground: lipgloss.Color("255"),
	BadgeBackground: lipgloss.Color("160"), // red

	IncomingLabel: lipgloss.Color("75"),  // blue
	OutgoingLabel: lipgloss.Color("114"), // green
	AutoLabel:     lipgloss.Color("141"), // light purple

	NoticeForeground: lipgloss.Color("220"), // amber
	NoticeBorder:     lipgloss.Color("136"),

	ActivityAccent: lipgloss.Color("58"), // dark amber background tint

	SearchHighlightBackground: lipgloss.Color("58"),

	WarnText:  lipgloss.Color("220"),
	ErrorText: lipgloss.Color("196"),
}
