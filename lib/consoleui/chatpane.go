// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/tui"
	"github.com/linedesk/linedesk/lib/view"
)

// Sender labels for messages not written by the counterpart.
const (
	OperatorLabel = "Operator"
	BotLabel      = "Bot"
)

// placeholderText is shown when no conversation is selected.
const placeholderText = "Select a conversation to start."

// timeLayout formats message timestamps in the chat pane.
const timeLayout = "01/02 15:04"

// ChatPane wraps a bubbles viewport holding the selected
// conversation's messages. It keeps the last frame so a resize can
// re-wrap the text.
type ChatPane struct {
	viewport  viewport.Model
	theme     tui.Theme
	width     int
	height    int
	frame     view.Frame
	directory chat.Directory
}

// NewChatPane creates an empty pane showing the placeholder.
func NewChatPane(theme tui.Theme) ChatPane {
	return ChatPane{theme: theme}
}

// contentWidth is the pane width minus the scrollbar column and the
// left padding column.
func (pane ChatPane) contentWidth() int {
	return max(pane.width-2, 1)
}

// SetSize updates the pane dimensions and re-wraps the content.
func (pane *ChatPane) SetSize(width, height int) {
	pane.width = width
	pane.height = height
	pane.viewport.Width = pane.contentWidth()
	pane.viewport.Height = max(height, 1)
	pane.rerender(pane.viewport.AtBottom())
}

// SetDirectory replaces the names used for sender labels.
func (pane *ChatPane) SetDirectory(directory chat.Directory) {
	pane.directory = directory
	pane.rerender(pane.viewport.AtBottom())
}

// SetFrame shows a new frame. The view follows new messages when it
// was already at the bottom or the conversation changed.
func (pane *ChatPane) SetFrame(frame view.Frame) {
	follow := pane.viewport.AtBottom() || frame.Conversation != pane.frame.Conversation
	pane.frame = frame
	pane.rerender(follow)
}

// Frame returns the frame on display.
func (pane ChatPane) Frame() view.Frame {
	return pane.frame
}

func (pane *ChatPane) rerender(follow bool) {
	if pane.frame.Placeholder() {
		pane.viewport.SetContent("")
		return
	}
	pane.viewport.SetContent(pane.renderMessages())
	if follow {
		pane.viewport.GotoBottom()
	}
}

func (pane ChatPane) renderMessages() string {
	width := pane.contentWidth()
	blocks := make([]string, 0, len(pane.frame.Messages))
	for _, message := range pane.frame.Messages {
		blocks = append(blocks, pane.renderMessage(message, width))
	}
	return strings.Join(blocks, "\n\n")
}

// SenderLabel returns the label shown above a message.
func SenderLabel(message chat.Message, directory chat.Directory) string {
	switch message.Kind {
	case chat.KindOutgoing:
		return OperatorLabel
	case chat.KindAuto:
		return BotLabel
	case chat.KindNotify:
		return ""
	default:
		return directory.Resolve(message.ConversationID)
	}
}

func (pane ChatPane) renderMessage(message chat.Message, width int) string {
	theme := pane.theme
	text := tui.PlainText(message.Text)
	stamp := lipgloss.NewStyle().Foreground(theme.FaintText).Render(message.Time().Format(timeLayout))

	if message.Kind == chat.KindNotify {
		bodyWidth := max(width*3/4, 1)
		body := lipgloss.NewStyle().
			Foreground(theme.NoticeForeground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.NoticeBorder).
			Padding(0, 1).
			Render(ansi.Wrap(text, max(bodyWidth-4, 1), ""))
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, stamp, body))
	}

	label := lipgloss.NewStyle().
		Foreground(theme.LabelColor(message.Kind)).
		Bold(true).
		Render(tui.PlainLine(SenderLabel(message, pane.directory)))
	bodyWidth := max(width*4/5, 1)
	body := lipgloss.NewStyle().Foreground(theme.NormalText).Render(ansi.Wrap(text, bodyWidth, ""))

	alignment := lipgloss.Left
	if message.Kind != chat.KindIncoming {
		alignment = lipgloss.Right
	}
	block := lipgloss.JoinVertical(alignment, label+" "+stamp, body)
	return lipgloss.PlaceHorizontal(width, alignment, block)
}

// ScrollUp scrolls the pane up by lines.
func (pane *ChatPane) ScrollUp(lines int) { pane.viewport.ScrollUp(lines) }

// ScrollDown scrolls the pane down by lines.
func (pane *ChatPane) ScrollDown(lines int) { pane.viewport.ScrollDown(lines) }

// PageUp scrolls up half a page.
func (pane *ChatPane) PageUp() { pane.viewport.HalfPageUp() }

// PageDown scrolls down half a page.
func (pane *ChatPane) PageDown() { pane.viewport.HalfPageDown() }

// Top jumps to the oldest message.
func (pane *ChatPane) Top() { pane.viewport.GotoTop() }

// Bottom jumps to the newest message.
func (pane *ChatPane) Bottom() { pane.viewport.GotoBottom() }

// View renders the pane at its configured size.
func (pane ChatPane) View(focused bool) string {
	if pane.frame.Placeholder() {
		return lipgloss.Place(pane.width, pane.height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(pane.theme.FaintText).Render(placeholderText))
	}
	body := lipgloss.NewStyle().
		PaddingLeft(1).
		Width(pane.width - 1).
		Height(pane.height).
		MaxHeight(pane.height).
		Render(pane.viewport.View())
	scrollbar := tui.RenderScrollbar(pane.theme, pane.height,
		pane.viewport.TotalLineCount(), pane.viewport.Height, pane.viewport.YOffset, focused)
	return lipgloss.JoinHorizontal(lipgloss.Top, body, scrollbar)
}
