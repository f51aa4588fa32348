// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/clock"
	"github.com/linedesk/linedesk/lib/testutil"
	"github.com/linedesk/linedesk/messaging"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const waitTimeout = 5 * time.Second

// fakeIntake records submitted events and serves a settable selection.
// Every Selected call is signalled on asked.
type fakeIntake struct {
	events   chan engine.Event
	asked    chan string
	selected atomic.Value
}

func newFakeIntake() *fakeIntake {
	intake := &fakeIntake{
		events: make(chan engine.Event, 64),
		asked:  make(chan string, 64),
	}
	intake.selected.Store("")
	return intake
}

func (intake *fakeIntake) Submit(ctx context.Context, event engine.Event) error {
	select {
	case intake.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (intake *fakeIntake) Selected() string {
	selected := intake.selected.Load().(string)
	intake.asked <- selected
	return selected
}

// fakeFetcher replies with queued results, then with an empty
// snapshot.
type fakeFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   chan string
	idle    atomic.Int32
}

type fetchResult struct {
	messages []chat.Message
	err      error
}

func newFakeFetcher(results ...fetchResult) *fakeFetcher {
	return &fakeFetcher{results: results, calls: make(chan string, 64)}
}

func (fetcher *fakeFetcher) Messages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	fetcher.calls <- conversationID
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	if len(fetcher.results) == 0 {
		return nil, nil
	}
	result := fetcher.results[0]
	fetcher.results = fetcher.results[1:]
	return result.messages, result.err
}

func (fetcher *fakeFetcher) CloseIdleConnections() { fetcher.idle.Add(1) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startAdapter(t *testing.T, config Config) (*Adapter, context.CancelFunc) {
	t.Helper()
	config.Logger = discardLogger()
	adapter, err := NewAdapter(config)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		adapter.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, done, waitTimeout, "adapter to stop")
	})
	return adapter, cancel
}

func requireSnapshot(t *testing.T, intake *fakeIntake) engine.PollSnapshot {
	t.Helper()
	event := testutil.RequireReceive(t, intake.events, waitTimeout, "waiting for snapshot")
	snapshot, ok := event.(engine.PollSnapshot)
	if !ok {
		t.Fatalf("event = %T, want PollSnapshot", event)
	}
	return snapshot
}

func TestNewAdapterRequiresIntake(t *testing.T) {
	if _, err := NewAdapter(Config{}); err == nil {
		t.Fatal("expected error without Intake")
	}
}

func TestPollMarksFirstSnapshotInitial(t *testing.T) {
	fake := clock.Fake(epoch)
	intake := newFakeIntake()
	intake.selected.Store("A")
	message := chat.NewMessage("m1", "A", chat.KindIncoming, "hi", 100)
	fetcher := newFakeFetcher(fetchResult{messages: []chat.Message{message}})
	startAdapter(t, Config{Intake: intake, Fetcher: fetcher, Clock: fake})

	fake.WaitForTimers(1)
	fake.Advance(DefaultPollInterval)
	first := requireSnapshot(t, intake)
	if !first.Initial || first.Scope != "A" || len(first.Messages) != 1 {
		t.Fatalf("first snapshot = %+v, want initial snapshot of A with one message", first)
	}

	fake.Advance(DefaultPollInterval)
	if second := requireSnapshot(t, intake); second.Initial {
		t.Fatal("second snapshot marked initial")
	}
}

func TestPollFailureIsSkipped(t *testing.T) {
	fake := clock.Fake(epoch)
	intake := newFakeIntake()
	intake.selected.Store("A")
	fetcher := newFakeFetcher(fetchResult{err: errors.New("connection refused")})
	startAdapter(t, Config{Intake: intake, Fetcher: fetcher, Clock: fake, PollInterval: time.Second})

	fake.WaitForTimers(1)
	fake.Advance(time.Second)
	testutil.RequireReceive(t, fetcher.calls, waitTimeout, "failed poll")

	// The failure carries no backoff: the next tick polls again, and
	// that first successful snapshot is the initial one.
	fake.Advance(time.Second)
	snapshot := requireSnapshot(t, intake)
	if !snapshot.Initial {
		t.Fatal("first successful snapshot after a failure not marked initial")
	}
	if fetcher.idle.Load() != 1 {
		t.Errorf("CloseIdleConnections called %d times, want 1", fetcher.idle.Load())
	}
}

func TestPollSkipsWithoutSelection(t *testing.T) {
	fake := clock.Fake(epoch)
	intake := newFakeIntake()
	fetcher := newFakeFetcher()
	adapter, _ := startAdapter(t, Config{Intake: intake, Fetcher: fetcher, Clock: fake})

	fake.WaitForTimers(1)
	fake.Advance(DefaultPollInterval)
	if scope := testutil.RequireReceive(t, intake.asked, waitTimeout, "tick to read selection"); scope != "" {
		t.Fatalf("selection = %q, want none", scope)
	}

	// Refresh polls immediately without waiting for the ticker.
	intake.selected.Store("B")
	adapter.Refresh()
	testutil.RequireReceive(t, intake.asked, waitTimeout, "refresh to read selection")
	if scope := testutil.RequireReceive(t, fetcher.calls, waitTimeout, "refresh poll"); scope != "B" {
		t.Fatalf("polled %q, want B (the empty-selection tick must not fetch)", scope)
	}
	if snapshot := requireSnapshot(t, intake); !snapshot.Initial || snapshot.Scope != "B" {
		t.Fatalf("snapshot = %+v, want initial snapshot of B", snapshot)
	}
}

func TestFailureError(t *testing.T) {
	cause := errors.New("timeout")
	failure := &Failure{Channel: "poll", Scope: "A", Err: cause}
	if !errors.Is(failure, cause) {
		t.Fatal("Failure does not unwrap to its cause")
	}
	if got := failure.Error(); got != "transport: poll A: timeout" {
		t.Errorf("Error() = %q", got)
	}
}

// fakeConn is a push connection fed from a channel. Closing end makes
// Next fail with io.EOF.
type fakeConn struct {
	events chan messaging.Event
	end    chan struct{}
	sent   chan string
	closed atomic.Bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		events: make(chan messaging.Event, 8),
		end:    make(chan struct{}),
		sent:   make(chan string, 8),
	}
}

func (conn *fakeConn) Next(ctx context.Context) (messaging.Event, error) {
	select {
	case event := <-conn.events:
		return event, nil
	case <-conn.end:
		return nil, io.ErrUnexpectedEOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (conn *fakeConn) Send(ctx context.Context, conversationID, text string) (string, error) {
	conn.sent <- conversationID + ":" + text
	return "txn", nil
}

func (conn *fakeConn) Close() error {
	conn.closed.Store(true)
	return nil
}

// fakeDialer hands out queued connections; with none queued it fails.
type fakeDialer struct {
	conns chan *fakeConn
	dials chan struct{}
}

func newFakeDialer(conns ...*fakeConn) *fakeDialer {
	dialer := &fakeDialer{conns: make(chan *fakeConn, 8), dials: make(chan struct{}, 16)}
	for _, conn := range conns {
		dialer.conns <- conn
	}
	return dialer
}

func (dialer *fakeDialer) dial(ctx context.Context) (PushConn, error) {
	dialer.dials <- struct{}{}
	select {
	case conn := <-dialer.conns:
		return conn, nil
	default:
		return nil, errors.New("connection refused")
	}
}

func TestPushForwardsEvents(t *testing.T) {
	conn := newFakeConn()
	dialer := newFakeDialer(conn)
	intake := newFakeIntake()
	adapter, _ := startAdapter(t, Config{Intake: intake, Dial: dialer.dial, Clock: clock.Fake(epoch)})

	message := chat.NewMessage("m1", "A", chat.KindIncoming, "hi", 100)
	conn.events <- messaging.MessageError{Error: "rejected", TransactionID: "txn-0"}
	conn.events <- messaging.NewMessage{Message: message}
	conn.events <- messaging.NewUser{User: chat.User{ID: "B", Name: "Suzuki"}}

	// MessageError produces no engine event.
	first := testutil.RequireReceive(t, intake.events, waitTimeout, "push message")
	if push, ok := first.(engine.PushMessage); !ok || push.Message != message {
		t.Fatalf("first event = %+v, want PushMessage of m1", first)
	}
	second := testutil.RequireReceive(t, intake.events, waitTimeout, "directory update")
	if update, ok := second.(engine.DirectoryUpdate); !ok || update.User.ID != "B" {
		t.Fatalf("second event = %+v, want DirectoryUpdate for B", second)
	}

	if !adapter.Connected() {
		t.Fatal("adapter not connected while the stream is open")
	}
	if err := adapter.Send(context.Background(), "A", "thanks"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent := testutil.RequireReceive(t, conn.sent, waitTimeout, "reply"); sent != "A:thanks" {
		t.Fatalf("sent %q, want A:thanks", sent)
	}
}

func TestPushReconnectsWithBackoff(t *testing.T) {
	fake := clock.Fake(epoch)
	first := newFakeConn()
	dialer := newFakeDialer(first)
	intake := newFakeIntake()
	adapter, _ := startAdapter(t, Config{
		Intake:       intake,
		Dial:         dialer.dial,
		Clock:        fake,
		ReconnectMin: time.Second,
		ReconnectMax: 4 * time.Second,
	})

	testutil.RequireReceive(t, dialer.dials, waitTimeout, "initial dial")
	close(first.end)

	// Established connection: backoff starts at the minimum.
	fake.WaitForTimers(1)
	if adapter.Connected() {
		t.Fatal("adapter reports connected after the stream ended")
	}
	if !first.closed.Load() {
		t.Fatal("ended connection was not closed")
	}
	if err := adapter.Send(context.Background(), "A", "x"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send while disconnected = %v, want ErrNotConnected", err)
	}

	// Redials fail from here on; waits double up to the maximum.
	for _, wait := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second} {
		if wait > time.Second {
			fake.Advance(wait - time.Second)
			select {
			case <-dialer.dials:
				t.Fatalf("redialed before the %v backoff elapsed", wait)
			default:
			}
			fake.Advance(time.Second)
		} else {
			fake.Advance(wait)
		}
		testutil.RequireReceive(t, dialer.dials, waitTimeout, "redial after %v", wait)
		fake.WaitForTimers(1)
	}
}
