// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/clock"
	"github.com/linedesk/linedesk/lib/metrics"
	"github.com/linedesk/linedesk/messaging"
)

// Defaults applied when Config leaves a duration zero.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultReconnectMin = time.Second
	DefaultReconnectMax = 30 * time.Second
)

// ErrNotConnected is returned by Send while the push channel is down.
var ErrNotConnected = errors.New("transport: push channel not connected")

// Intake is where the adapter delivers events. *engine.Engine
// implements it.
type Intake interface {
	Submit(ctx context.Context, event engine.Event) error

	// Selected returns the conversation the poll loop should fetch,
	// or "" for none.
	Selected() string
}

// Fetcher returns the full message list of one conversation.
// *messaging.Client implements it.
type Fetcher interface {
	Messages(ctx context.Context, conversationID string) ([]chat.Message, error)
}

// PushConn is one push channel connection. *messaging.Stream
// implements it.
type PushConn interface {
	Next(ctx context.Context) (messaging.Event, error)
	Send(ctx context.Context, conversationID, text string) (string, error)
	Close() error
}

// DialFunc opens a push connection.
type DialFunc func(ctx context.Context) (PushConn, error)

// Failure wraps an error from one sync channel.
type Failure struct {
	// Channel is "push" or "poll".
	Channel metrics.Channel

	// Scope is the polled conversation; empty for push failures.
	Scope string

	Err error
}

func (f *Failure) Error() string {
	if f.Scope != "" {
		return fmt.Sprintf("transport: %s %s: %v", f.Channel, f.Scope, f.Err)
	}
	return fmt.Sprintf("transport: %s: %v", f.Channel, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Config holds the adapter's collaborators.
type Config struct {
	// Intake receives events. Required.
	Intake Intake

	// Fetcher serves polls. If nil, the poll loop does not run.
	Fetcher Fetcher

	// Dial opens push connections. If nil, the push loop does not
	// run.
	Dial DialFunc

	// Clock drives the poll ticker and reconnect backoff. If nil,
	// clock.Real() is used.
	Clock clock.Clock

	PollInterval time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Adapter runs the push and poll loops.
type Adapter struct {
	intake       Intake
	fetcher      Fetcher
	dial         DialFunc
	clock        clock.Clock
	pollInterval time.Duration
	reconnectMin time.Duration
	reconnectMax time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger

	// refresh requests an out-of-band poll. Capacity 1: requests
	// made while one is pending coalesce.
	refresh chan struct{}

	mu   sync.Mutex
	conn PushConn
}

// NewAdapter creates an adapter. Call Run to start it.
func NewAdapter(config Config) (*Adapter, error) {
	if config.Intake == nil {
		return nil, fmt.Errorf("transport: Intake is required")
	}
	adapter := &Adapter{
		intake:       config.Intake,
		fetcher:      config.Fetcher,
		dial:         config.Dial,
		clock:        config.Clock,
		pollInterval: config.PollInterval,
		reconnectMin: config.ReconnectMin,
		reconnectMax: config.ReconnectMax,
		metrics:      config.Metrics,
		logger:       config.Logger,
		refresh:      make(chan struct{}, 1),
	}
	if adapter.clock == nil {
		adapter.clock = clock.Real()
	}
	if adapter.pollInterval <= 0 {
		adapter.pollInterval = DefaultPollInterval
	}
	if adapter.reconnectMin <= 0 {
		adapter.reconnectMin = DefaultReconnectMin
	}
	if adapter.reconnectMax < adapter.reconnectMin {
		adapter.reconnectMax = max(DefaultReconnectMax, adapter.reconnectMin)
	}
	if adapter.logger == nil {
		adapter.logger = slog.Default()
	}
	return adapter, nil
}

// Run runs both loops until ctx is cancelled.
func (adapter *Adapter) Run(ctx context.Context) error {
	var group sync.WaitGroup
	if adapter.dial != nil {
		group.Add(1)
		go func() {
			defer group.Done()
			adapter.pushLoop(ctx)
		}()
	}
	if adapter.fetcher != nil {
		group.Add(1)
		go func() {
			defer group.Done()
			adapter.pollLoop(ctx)
		}()
	}
	group.Wait()
	return ctx.Err()
}

// Refresh requests a poll now instead of at the next tick. Callers
// use it after changing the selection.
func (adapter *Adapter) Refresh() {
	select {
	case adapter.refresh <- struct{}{}:
	default:
	}
}

// Send delivers an operator reply over the current push connection.
func (adapter *Adapter) Send(ctx context.Context, conversationID, text string) error {
	adapter.mu.Lock()
	conn := adapter.conn
	adapter.mu.Unlock()
	if conn == nil {
		adapter.metrics.SendFailure()
		return ErrNotConnected
	}
	if _, err := conn.Send(ctx, conversationID, text); err != nil {
		adapter.metrics.SendFailure()
		return &Failure{Channel: metrics.ChannelPush, Err: err}
	}
	return nil
}

// Connected reports whether the push channel is up.
func (adapter *Adapter) Connected() bool {
	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	return adapter.conn != nil
}

func (adapter *Adapter) setConn(conn PushConn) {
	adapter.mu.Lock()
	adapter.conn = conn
	adapter.mu.Unlock()
}
