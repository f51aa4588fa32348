// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/clock"
	"github.com/linedesk/linedesk/lib/tui"
)

// Controller carries the operator's actions out of the console.
type Controller interface {
	// Select makes a conversation current. An empty id clears the
	// selection.
	Select(ctx context.Context, conversationID string) error

	// Send delivers a reply to a conversation's end-user.
	Send(ctx context.Context, conversationID, text string) error
}

// FocusRegion identifies which part of the console takes keys.
type FocusRegion int

const (
	// FocusList means navigation keys move the conversation cursor.
	FocusList FocusRegion = iota
	// FocusChat means navigation keys scroll the chat pane.
	FocusChat
	// FocusCompose means keys go to the compose line.
	FocusCompose
	// FocusFilter means keys go to the conversation filter.
	FocusFilter
)

func (focus FocusRegion) String() string {
	switch focus {
	case FocusChat:
		return "CHAT"
	case FocusCompose:
		return "REPLY"
	case FocusFilter:
		return "FILTER"
	default:
		return "LIST"
	}
}

// commandTimeout bounds each controller call.
const commandTimeout = 10 * time.Second

// listWidthRatio is the share of the terminal given to the
// conversation list, within [minListWidth, maxListWidth] columns.
const (
	listWidthRatio = 0.28
	minListWidth   = 18
	maxListWidth   = 40
)

// maxReplyLength is the compose line's character limit, matching the
// LINE text message limit.
const maxReplyLength = 5000

type (
	selectResultMsg struct {
		conversationID string
		err            error
	}
	sendResultMsg struct {
		conversationID string
		err            error
	}
	activityTickMsg struct{}
)

// Options configures a Model.
type Options struct {
	Controller Controller
	Theme      *tui.Theme
	Keys       *KeyMap
	Clock      clock.Clock
}

// Model is the top-level bubbletea model for the console.
type Model struct {
	controller Controller
	theme      tui.Theme
	keys       KeyMap
	clock      clock.Clock

	width  int
	height int
	ready  bool

	focus      FocusRegion
	priorFocus FocusRegion

	list      ConversationList
	chat      ChatPane
	compose   textinput.Model
	directory chat.Directory

	// selected is the conversation of the last frame received, which
	// is the engine's applied selection.
	selected string

	// autoSelected is set once the first directory has been used to
	// pick a default conversation.
	autoSelected bool

	activity    *tui.ActivityTracker
	tickRunning bool

	status         *logRecordMsg
	statusSequence int
}

// NewModel creates the console model.
func NewModel(options Options) Model {
	theme := tui.DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}

	compose := textinput.New()
	compose.Prompt = "› "
	compose.Placeholder = "Press i to reply"
	compose.CharLimit = maxReplyLength

	return Model{
		controller: options.Controller,
		theme:      theme,
		keys:       keys,
		clock:      clk,
		list:       NewConversationList(),
		chat:       NewChatPane(theme),
		compose:    compose,
		activity:   tui.NewActivityTracker(),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Selected returns the conversation on screen.
func (model Model) Selected() string {
	return model.selected
}

// Focus returns the focused region.
func (model Model) Focus() FocusRegion {
	return model.focus
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := model.update(message)
	next.list.ensureCursorVisible(next.contentHeight())
	return next, cmd
}

func (model Model) update(message tea.Msg) (Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()

	case frameMsg:
		model.selected = message.frame.Conversation
		model.chat.SetFrame(message.frame)
		model.compose.Placeholder = model.composePlaceholder()

	case unreadMsg:
		if model.list.SetUnread(message.conversationID, message.count) {
			model.activity.Ignite(message.conversationID, model.clock.Now())
			cmd := model.startActivityTick()
			return model, cmd
		}

	case directoryMsg:
		model.directory = chat.NewDirectory(message.users)
		model.list.SetUsers(message.users)
		model.chat.SetDirectory(model.directory)
		if !model.autoSelected && model.selected == "" {
			if first, ok := model.list.First(); ok {
				model.autoSelected = true
				model.list.MoveTo(first.ID)
				return model, model.selectConversation(first.ID)
			}
		}

	case selectResultMsg:
		if message.err != nil {
			return model, statusCmd(slog.LevelError,
				fmt.Sprintf("selecting %s failed: %v", model.directory.Resolve(message.conversationID), message.err))
		}

	case sendResultMsg:
		if message.err != nil {
			return model, statusCmd(slog.LevelError, "send failed: "+message.err.Error())
		}

	case activityTickMsg:
		if model.activity.HasHot(model.clock.Now()) {
			return model, scheduleActivityTick()
		}
		model.tickRunning = false

	case logRecordMsg:
		model.statusSequence++
		model.status = &message
		sequence := model.statusSequence
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{sequence: sequence}
		})

	case logRecordFadeMsg:
		if message.sequence == model.statusSequence {
			model.status = nil
		}
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(message, model.keys.ForceQuit) {
		return model, tea.Quit
	}

	switch model.focus {
	case FocusCompose:
		return model.handleComposeKeys(message)
	case FocusFilter:
		return model.handleFilterKeys(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusList {
			model.focus = FocusChat
		} else {
			model.focus = FocusList
		}

	case key.Matches(message, model.keys.Compose):
		if model.selected != "" {
			model.priorFocus = model.focus
			model.focus = FocusCompose
			cmd := model.compose.Focus()
			return model, cmd
		}

	case key.Matches(message, model.keys.FilterActivate):
		model.priorFocus = model.focus
		model.focus = FocusFilter

	case key.Matches(message, model.keys.Deselect):
		if model.list.Filter != "" {
			model.list.SetFilter("")
		} else if model.selected != "" {
			return model, model.selectConversation("")
		}

	case model.focus == FocusList:
		return model.handleListKeys(message)

	default:
		model.handleChatKeys(message)
	}
	return model, nil
}

func (model Model) handleListKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	page := max(model.contentHeight()/2, 1)
	switch {
	case key.Matches(message, model.keys.Up):
		model.list.Move(-1)
	case key.Matches(message, model.keys.Down):
		model.list.Move(1)
	case key.Matches(message, model.keys.PageUp):
		model.list.Move(-page)
	case key.Matches(message, model.keys.PageDown):
		model.list.Move(page)
	case key.Matches(message, model.keys.Home):
		model.list.Move(-model.list.Len())
	case key.Matches(message, model.keys.End):
		model.list.Move(model.list.Len())
	case key.Matches(message, model.keys.Open):
		if user, ok := model.list.Current(); ok && user.ID != model.selected {
			return model, model.selectConversation(user.ID)
		}
	}
	return model, nil
}

func (model *Model) handleChatKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.chat.ScrollUp(1)
	case key.Matches(message, model.keys.Down):
		model.chat.ScrollDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.chat.PageUp()
	case key.Matches(message, model.keys.PageDown):
		model.chat.PageDown()
	case key.Matches(message, model.keys.Home):
		model.chat.Top()
	case key.Matches(message, model.keys.End):
		model.chat.Bottom()
	}
}

func (model Model) handleComposeKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyEsc, key.Matches(message, model.keys.FocusToggle):
		model.compose.Blur()
		model.focus = model.priorFocus
		return model, nil

	case key.Matches(message, model.keys.Send):
		text := strings.TrimSpace(model.compose.Value())
		if text == "" || model.selected == "" {
			return model, nil
		}
		model.compose.Reset()
		return model, model.send(model.selected, text)
	}

	var cmd tea.Cmd
	model.compose, cmd = model.compose.Update(message)
	return model, cmd
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.list.SetFilter("")
		model.focus = model.priorFocus
	case tea.KeyEnter:
		model.focus = FocusList
		if user, ok := model.list.Current(); ok && user.ID != model.selected {
			return model, model.selectConversation(user.ID)
		}
	case tea.KeyBackspace:
		runes := []rune(model.list.Filter)
		if len(runes) > 0 {
			model.list.SetFilter(string(runes[:len(runes)-1]))
		}
	case tea.KeyUp:
		model.list.Move(-1)
	case tea.KeyDown:
		model.list.Move(1)
	case tea.KeyRunes, tea.KeySpace:
		model.list.SetFilter(model.list.Filter + string(message.Runes))
	}
	return model, nil
}

// selectConversation asks the controller to change the selection.
// The screen follows when the engine renders the new frame.
func (model Model) selectConversation(conversationID string) tea.Cmd {
	if model.controller == nil {
		return nil
	}
	controller := model.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return selectResultMsg{conversationID: conversationID, err: controller.Select(ctx, conversationID)}
	}
}

func (model Model) send(conversationID, text string) tea.Cmd {
	if model.controller == nil {
		return nil
	}
	controller := model.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return sendResultMsg{conversationID: conversationID, err: controller.Send(ctx, conversationID, text)}
	}
}

// statusCmd puts a message in the status bar through the same path
// as log records.
func statusCmd(level slog.Level, text string) tea.Cmd {
	return func() tea.Msg {
		return logRecordMsg{Summary: text, Level: level}
	}
}

func (model *Model) startActivityTick() tea.Cmd {
	if model.tickRunning {
		return nil
	}
	model.tickRunning = true
	return scheduleActivityTick()
}

func scheduleActivityTick() tea.Cmd {
	return tea.Tick(tui.ActivityTickInterval, func(time.Time) tea.Msg {
		return activityTickMsg{}
	})
}

func (model Model) composePlaceholder() string {
	if model.selected == "" {
		return "Select a conversation to reply"
	}
	return "Reply to " + tui.PlainLine(model.directory.Resolve(model.selected)) + " (press i)"
}

// Layout: header, content, separator, compose line, separator, help.
func (model Model) contentHeight() int {
	return max(model.height-5, 1)
}

func (model Model) listWidth() int {
	width := int(float64(model.width) * listWidthRatio)
	return max(minListWidth, min(maxListWidth, width))
}

func (model *Model) updatePaneSizes() {
	chatWidth := max(model.width-model.listWidth()-1, 10)
	model.chat.SetSize(chatWidth, model.contentHeight())
	model.compose.Width = max(model.width-4, 1)
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	height := model.contentHeight()
	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))

	listView := model.list.View(listRenderState{
		theme:    model.theme,
		width:    model.listWidth(),
		height:   height,
		selected: model.selected,
		focused:  model.focus == FocusList || model.focus == FocusFilter,
		now:      model.clock.Now(),
		activity: model.activity,
	})
	divider := lipgloss.NewStyle().Foreground(model.theme.BorderColor).
		Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
	content := lipgloss.JoinHorizontal(lipgloss.Top, listView, divider, model.chat.View(model.focus == FocusChat))

	return strings.Join([]string{
		model.renderHeader(),
		content,
		separator,
		model.compose.View(),
		separator,
		model.renderStatus(),
	}, "\n")
}

func (model Model) renderHeader() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	if model.focus == FocusFilter {
		filter := lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(" / " + model.list.Filter + "▏")
		return style.Render(" linedesk") + filter
	}

	header := style.Render(" linedesk")
	if model.selected != "" {
		header += lipgloss.NewStyle().Foreground(model.theme.NormalText).
			Render("  " + tui.PlainLine(model.directory.Resolve(model.selected)))
	}
	if total := model.list.TotalUnread(); total > 0 {
		header += "  " + lipgloss.NewStyle().
			Foreground(model.theme.BadgeForeground).
			Background(model.theme.BadgeBackground).
			Render(fmt.Sprintf(" %d unread ", total))
	}
	return ansi.Truncate(header, model.width, "…")
}

func (model Model) renderStatus() string {
	if model.status != nil {
		color := model.theme.NormalText
		switch {
		case model.status.Level >= slog.LevelError:
			color = model.theme.ErrorText
		case model.status.Level >= slog.LevelWarn:
			color = model.theme.WarnText
		}
		return lipgloss.NewStyle().Foreground(color).
			Render(ansi.Truncate(" "+tui.PlainLine(model.status.Summary), model.width, "…"))
	}

	help := fmt.Sprintf(" [%s] q quit  ↑↓ navigate  enter open  i reply  / filter  Tab focus  Esc close", model.focus)
	if model.focus == FocusCompose {
		help = fmt.Sprintf(" [%s] enter send  Esc cancel", model.focus)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(ansi.Truncate(help, model.width, "…"))
}
