// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/tui"
)

// conversationRow is one visible entry of the conversation list.
type conversationRow struct {
	user chat.User

	// positions are the rune indices of the user's name matched by
	// the filter; nil when no filter is set.
	positions []int
	score     int
}

// ConversationList holds the left pane: the directory, unread counts,
// the filter, and the cursor. The cursor tracks a user id so it stays
// on the same conversation when the directory or filter changes.
type ConversationList struct {
	users  []chat.User
	unread map[string]int
	rows   []conversationRow

	// Filter is the current filter query. Empty shows every user.
	Filter string

	cursor       int
	cursorID     string
	scrollOffset int
	slab         *util.Slab
}

// NewConversationList creates an empty list.
func NewConversationList() ConversationList {
	return ConversationList{
		unread: make(map[string]int),
		slab:   util.MakeSlab(100*1024, 2048),
	}
}

// SetUsers replaces the directory. Users arrive sorted.
func (list *ConversationList) SetUsers(users []chat.User) {
	list.users = users
	list.rebuild()
}

// SetUnread records a conversation's unread count and reports whether
// it grew.
func (list *ConversationList) SetUnread(conversationID string, count int) bool {
	previous := list.unread[conversationID]
	if count <= 0 {
		delete(list.unread, conversationID)
	} else {
		list.unread[conversationID] = count
	}
	return count > previous
}

// Unread returns a conversation's unread count.
func (list ConversationList) Unread(conversationID string) int {
	return list.unread[conversationID]
}

// TotalUnread returns the sum of all unread counts.
func (list ConversationList) TotalUnread() int {
	total := 0
	for _, count := range list.unread {
		total += count
	}
	return total
}

// SetFilter replaces the filter query and moves the cursor to the
// best match.
func (list *ConversationList) SetFilter(query string) {
	list.Filter = query
	list.rebuild()
	if query != "" && len(list.rows) > 0 {
		list.cursor = 0
		list.cursorID = list.rows[0].user.ID
		list.scrollOffset = 0
	}
}

func (list *ConversationList) rebuild() {
	list.rows = list.rows[:0]
	if list.Filter == "" {
		for _, user := range list.users {
			list.rows = append(list.rows, conversationRow{user: user})
		}
	} else {
		pattern := []rune(list.Filter)
		for _, user := range list.users {
			match := tui.FuzzyMatch(user.Name, pattern, list.slab)
			if match.Score == 0 {
				// Fall back to the user id so operators can paste one.
				match = tui.FuzzyMatch(user.ID, pattern, list.slab)
				match.Positions = nil
			}
			if match.Score > 0 {
				list.rows = append(list.rows, conversationRow{
					user:      user,
					positions: match.Positions,
					score:     match.Score,
				})
			}
		}
		slices.SortStableFunc(list.rows, func(a, b conversationRow) int {
			return cmp.Compare(b.score, a.score)
		})
	}
	list.restoreCursor()
}

func (list *ConversationList) restoreCursor() {
	if list.cursorID != "" {
		for index, row := range list.rows {
			if row.user.ID == list.cursorID {
				list.cursor = index
				return
			}
		}
	}
	list.cursor = min(list.cursor, max(len(list.rows)-1, 0))
	if len(list.rows) > 0 {
		list.cursorID = list.rows[list.cursor].user.ID
	} else {
		list.cursorID = ""
	}
}

// Len returns the number of visible rows.
func (list ConversationList) Len() int { return len(list.rows) }

// Current returns the user under the cursor.
func (list ConversationList) Current() (chat.User, bool) {
	if len(list.rows) == 0 {
		return chat.User{}, false
	}
	return list.rows[list.cursor].user, true
}

// First returns the first user of the directory regardless of the
// filter.
func (list ConversationList) First() (chat.User, bool) {
	if len(list.users) == 0 {
		return chat.User{}, false
	}
	return list.users[0], true
}

// Move shifts the cursor by delta rows, clamped to the list.
func (list *ConversationList) Move(delta int) {
	if len(list.rows) == 0 {
		return
	}
	list.cursor = max(0, min(len(list.rows)-1, list.cursor+delta))
	list.cursorID = list.rows[list.cursor].user.ID
}

// MoveTo places the cursor on a conversation if it is visible.
func (list *ConversationList) MoveTo(conversationID string) {
	for index, row := range list.rows {
		if row.user.ID == conversationID {
			list.cursor = index
			list.cursorID = conversationID
			return
		}
	}
}

func (list *ConversationList) ensureCursorVisible(visible int) {
	if visible <= 0 {
		return
	}
	maxOffset := max(len(list.rows)-visible, 0)
	list.scrollOffset = min(list.scrollOffset, maxOffset)
	if list.cursor < list.scrollOffset {
		list.scrollOffset = list.cursor
	}
	if list.cursor >= list.scrollOffset+visible {
		list.scrollOffset = list.cursor - visible + 1
	}
}

// listRenderState is what the list renderer needs from the model.
type listRenderState struct {
	theme    tui.Theme
	width    int
	height   int
	selected string
	focused  bool
	now      time.Time
	activity *tui.ActivityTracker
}

// View renders the list pane, scrollbar included.
func (list ConversationList) View(state listRenderState) string {
	rowWidth := max(state.width-1, 1)

	var rows []string
	for index := list.scrollOffset; index < list.scrollOffset+state.height && index < len(list.rows); index++ {
		rows = append(rows, list.renderRow(list.rows[index], index == list.cursor, rowWidth, state))
	}
	if len(rows) == 0 {
		empty := "No conversations."
		if list.Filter != "" {
			empty = "No matches."
		}
		rows = append(rows, lipgloss.NewStyle().Foreground(state.theme.FaintText).Render(" "+empty))
	}

	content := lipgloss.NewStyle().Width(rowWidth).Height(state.height).MaxHeight(state.height).
		Render(strings.Join(rows, "\n"))
	scrollbar := tui.RenderScrollbar(state.theme, state.height, len(list.rows), state.height, list.scrollOffset, state.focused)
	return lipgloss.JoinHorizontal(lipgloss.Top, content, scrollbar)
}

func (list ConversationList) renderRow(row conversationRow, cursor bool, width int, state listRenderState) string {
	theme := state.theme
	marker := "  "
	if row.user.ID == state.selected {
		marker = "▶ "
	}

	badge := ""
	if count := list.unread[row.user.ID]; count > 0 {
		label := fmt.Sprintf(" %d ", count)
		if count > 99 {
			label = " 99+ "
		}
		badge = lipgloss.NewStyle().
			Foreground(theme.BadgeForeground).
			Background(theme.BadgeBackground).
			Bold(true).
			Render(label)
	}

	nameWidth := max(width-len(marker)-lipgloss.Width(badge)-1, 1)
	name := ansi.Truncate(tui.PlainLine(row.user.Name), nameWidth, "…")

	base := lipgloss.NewStyle().Foreground(theme.NormalText)
	switch {
	case cursor && state.focused:
		base = base.Background(theme.SelectedBackground).Foreground(theme.SelectedForeground).Bold(true)
	case cursor:
		base = base.Background(theme.SelectedBackground)
	case state.activity.Heat(row.user.ID, state.now) > 0:
		base = base.Background(theme.ActivityAccent)
	}

	rendered := highlightRunes(name, row.positions, base, base.Background(theme.SearchHighlightBackground).Underline(true))
	padding := max(width-len(marker)-lipgloss.Width(name)-lipgloss.Width(badge), 0)
	return base.Render(marker) + rendered + base.Render(strings.Repeat(" ", padding)) + badge
}

// highlightRunes renders text with the runes at positions in the
// highlight style and the rest in the base style. Positions beyond a
// truncated text are ignored.
func highlightRunes(text string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	marked := make(map[int]bool, len(positions))
	for _, position := range positions {
		marked[position] = true
	}

	var builder strings.Builder
	var run []rune
	runHighlighted := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runHighlighted {
			builder.WriteString(highlight.Render(string(run)))
		} else {
			builder.WriteString(base.Render(string(run)))
		}
		run = run[:0]
	}
	for index, character := range []rune(text) {
		if marked[index] != runHighlighted {
			flush()
			runHighlighted = marked[index]
		}
		run = append(run, character)
	}
	flush()
	return builder.String()
}
