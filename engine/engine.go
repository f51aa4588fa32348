// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/metrics"
	"github.com/linedesk/linedesk/lib/msgstore"
	"github.com/linedesk/linedesk/lib/notify"
	"github.com/linedesk/linedesk/lib/unread"
	"github.com/linedesk/linedesk/lib/view"
)

// DefaultIntakeBuffer is the intake queue capacity when Config leaves
// it zero.
const DefaultIntakeBuffer = 256

// ErrStopped is returned by Submit once Run has returned.
var ErrStopped = errors.New("engine: stopped")

// Config holds the engine's collaborators. Every field is optional.
type Config struct {
	View   ViewSink
	Alerts AlertSink

	// Recorder, if set, receives each event before it is applied.
	Recorder Recorder

	// Directory seeds the user directory.
	Directory []chat.User

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// IntakeBuffer is the intake queue capacity.
	IntakeBuffer int
}

// Engine owns the message store, unread tracker, notification gate,
// and user directory. Their state is touched only by Apply, which Run
// calls from a single goroutine.
type Engine struct {
	view     ViewSink
	alerts   AlertSink
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger

	intake  chan Event
	stopped chan struct{}

	// requested is the most recent selection passed to Select. The
	// poll loop reads it from other goroutines to choose its scope.
	requested atomic.Value

	store     *msgstore.Store
	tracker   *unread.Tracker
	gate      notify.Gate
	directory chat.Directory
}

// New creates an engine. Call Run to start processing.
func New(config Config) *Engine {
	engine := &Engine{
		view:      config.View,
		alerts:    config.Alerts,
		recorder:  config.Recorder,
		metrics:   config.Metrics,
		logger:    config.Logger,
		stopped:   make(chan struct{}),
		store:     msgstore.New(),
		tracker:   unread.New(),
		directory: chat.NewDirectory(config.Directory),
	}
	if engine.view == nil {
		engine.view = discardSink{}
	}
	if engine.alerts == nil {
		engine.alerts = discardSink{}
	}
	if engine.logger == nil {
		engine.logger = slog.Default()
	}
	buffer := config.IntakeBuffer
	if buffer <= 0 {
		buffer = DefaultIntakeBuffer
	}
	engine.intake = make(chan Event, buffer)
	engine.requested.Store("")
	return engine
}

// Run applies intake events until ctx is cancelled. It publishes the
// seeded directory and an initial frame before the first event.
func (engine *Engine) Run(ctx context.Context) error {
	defer close(engine.stopped)

	engine.view.SetDirectory(engine.directory.Users())
	engine.render()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-engine.intake:
			engine.Apply(event)
		}
	}
}

// Submit enqueues an event, blocking while the queue is full.
func (engine *Engine) Submit(ctx context.Context, event Event) error {
	select {
	case engine.intake <- event:
		return nil
	case <-engine.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Select enqueues a selection change and, once it is queued, records
// it for Selected. A failed Submit leaves Selected unchanged. Prefer it
// over submitting a Select event directly.
func (engine *Engine) Select(ctx context.Context, conversationID string) error {
	if err := engine.Submit(ctx, Select{Conversation: conversationID}); err != nil {
		return err
	}
	engine.requested.Store(conversationID)
	return nil
}

// Selected returns the most recently requested selection. It is safe
// to call from any goroutine and may run ahead of the applied state
// by the events still queued.
func (engine *Engine) Selected() string {
	return engine.requested.Load().(string)
}

// Apply performs one event's state transition and drives the sinks.
// It must not be called concurrently with Run or with itself.
func (engine *Engine) Apply(event Event) {
	if engine.recorder != nil {
		if err := engine.recorder.Record(event); err != nil {
			engine.logger.Warn("recording intake event failed",
				"event", EventName(event),
				"error", err,
			)
		}
	}

	switch event := event.(type) {
	case PushMessage:
		engine.applyPush(event)
	case PollSnapshot:
		engine.applyPoll(event)
	case Select:
		engine.applySelect(event)
	case DirectoryUpdate:
		if engine.directory.Put(event.User) {
			engine.view.SetDirectory(engine.directory.Users())
		}
	case DirectoryReset:
		engine.directory = chat.NewDirectory(event.Users)
		engine.view.SetDirectory(engine.directory.Users())
	default:
		panic(fmt.Sprintf("engine: unhandled event type %T", event))
	}
}

func (engine *Engine) applyPush(event PushMessage) {
	result := engine.store.Ingest(event.Message)
	if !result.Accepted {
		engine.metrics.Duplicate(metrics.ChannelPush)
		engine.logger.Debug("duplicate push message dropped",
			"message_id", event.Message.Normalize().ID,
			"conversation", event.Message.ConversationID,
		)
		return
	}
	engine.accept(result.Entry.Message, metrics.ChannelPush, false)
	if result.Entry.VisibleIn(engine.tracker.Selected()) {
		engine.render()
	}
}

func (engine *Engine) applyPoll(event PollSnapshot) {
	accepted := engine.store.ReplaceSnapshot(event.Scope, event.Messages)
	for range len(event.Messages) - len(accepted) {
		engine.metrics.Duplicate(metrics.ChannelPoll)
	}

	visible := false
	selected := engine.tracker.Selected()
	for _, entry := range accepted {
		engine.accept(entry.Message, metrics.ChannelPoll, event.Initial)
		visible = visible || entry.VisibleIn(selected)
	}

	engine.logger.Debug("poll snapshot merged",
		"scope", event.Scope,
		"received", len(event.Messages),
		"accepted", len(accepted),
		"initial", event.Initial,
	)
	if visible {
		engine.render()
	}
}

// accept runs the per-message side effects of a newly stored
// message: unread accounting, the chime, and the notice gate.
func (engine *Engine) accept(message chat.Message, channel metrics.Channel, initialBatch bool) {
	engine.metrics.Ingested(channel, message.Kind)

	switch message.Kind {
	case chat.KindIncoming:
		engine.countIncoming(message)
	case chat.KindNotify:
		engine.evaluateNotice(message, initialBatch)
	case chat.KindOutgoing, chat.KindAuto:
	}
}

func (engine *Engine) countIncoming(message chat.Message) {
	conversation := message.ConversationID
	if !engine.directory.Has(conversation) {
		engine.metrics.UnknownConversation()
		engine.logger.Debug("incoming message for conversation outside the directory",
			"conversation", conversation,
			"message_id", message.ID,
		)
		return
	}
	if !engine.tracker.OnIncoming(conversation) {
		return
	}
	engine.view.SetUnreadBadge(conversation, engine.tracker.Count(conversation))
	engine.metrics.SetUnreadTotal(engine.tracker.Total())
	if err := engine.alerts.Chime(conversation); err != nil {
		engine.logger.Debug("unread chime failed", "conversation", conversation, "error", err)
	}
}

func (engine *Engine) evaluateNotice(message chat.Message, initialBatch bool) {
	if !engine.gate.Evaluate(message, initialBatch) {
		return
	}
	err := engine.alerts.Alert(message.Text)
	engine.metrics.Alert(err)
	if err != nil {
		engine.logger.Warn("notice alert failed",
			"message_id", message.ID,
			"error", err,
		)
	}
}

func (engine *Engine) applySelect(event Select) {
	engine.tracker.OnSelect(event.Conversation)
	if event.Conversation != "" {
		engine.view.SetUnreadBadge(event.Conversation, 0)
	}
	engine.metrics.SetUnreadTotal(engine.tracker.Total())
	engine.render()
}

func (engine *Engine) render() {
	engine.view.Render(view.Project(engine.store.Snapshot(), engine.tracker.Selected()))
}

// State is a summary of the engine's contents.
type State struct {
	// Messages is the per-conversation count of stored messages,
	// excluding notices.
	Messages map[string]int
	Notices  int
	Unread   map[string]int
	Selected string

	// Watermark is the newest notice timestamp that alerted; valid
	// only when Alerted is true.
	Watermark int64
	Alerted   bool
}

// State summarizes the current contents. Like Apply, it must not be
// called while Run is active.
func (engine *Engine) State() State {
	state := State{
		Messages: make(map[string]int),
		Notices:  engine.store.NoticeCount(),
		Unread:   engine.tracker.Counts(),
		Selected: engine.tracker.Selected(),
	}
	for _, conversation := range engine.store.Conversations() {
		state.Messages[conversation] = engine.store.Len(conversation)
	}
	state.Watermark, state.Alerted = engine.gate.Watermark()
	return state
}

// Query returns the messages visible in a conversation. Like Apply,
// it must not be called while Run is active.
func (engine *Engine) Query(conversationID string) []chat.Message {
	return engine.store.Query(conversationID)
}
