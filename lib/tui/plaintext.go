// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// PlainText makes end-user text safe to draw: escape sequences are
// removed and every other control character except newline becomes a
// space, so the text cannot move the cursor or ring the bell.
func PlainText(text string) string {
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		lines[index] = PlainLine(line)
	}
	return strings.Join(lines, "\n")
}

// PlainLine is PlainText for single-line fields such as names; a
// newline also becomes a space.
func PlainLine(text string) string {
	return strings.Map(controlToSpace, ansi.Strip(text))
}

func controlToSpace(r rune) rune {
	if unicode.IsControl(r) {
		return ' '
	}
	return r
}
