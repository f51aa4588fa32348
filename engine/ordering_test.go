// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/linedesk/linedesk/lib/chat"
)

// permutations returns every ordering of items.
func permutations[T any](items []T) [][]T {
	if len(items) <= 1 {
		return [][]T{append([]T(nil), items...)}
	}
	var result [][]T
	for index := range items {
		rest := make([]T, 0, len(items)-1)
		rest = append(rest, items[:index]...)
		rest = append(rest, items[index+1:]...)
		for _, tail := range permutations(rest) {
			result = append(result, append([]T{items[index]}, tail...))
		}
	}
	return result
}

func labeledNotice(timestamp int64) chat.Message {
	return chat.NewMessage("", "", chat.KindNotify, strconv.FormatInt(timestamp, 10), timestamp)
}

// TestDeliveryOrderDoesNotMatter feeds every ordering of a small set of
// notices and incoming messages through a mix of push and poll, then
// re-delivers all of them in one poll. The outcome must not depend on
// the order.
func TestDeliveryOrderDoesNotMatter(t *testing.T) {
	items := []chat.Message{
		labeledNotice(10),
		labeledNotice(20),
		labeledNotice(30),
		incoming("a1", "A", 15),
		incoming("a2", "A", 25),
	}

	for number, order := range permutations(items) {
		t.Run(fmt.Sprintf("order%03d", number), func(t *testing.T) {
			sink := newRecordingSink()
			engine := newTestEngine(sink, userA, userB)
			engine.Apply(Select{Conversation: "B"})

			for index, message := range order {
				if index%2 == 0 {
					engine.Apply(PushMessage{Message: message})
				} else {
					engine.Apply(PollSnapshot{Scope: "A", Messages: []chat.Message{message}})
				}
			}
			engine.Apply(PollSnapshot{Scope: "A", Messages: order})

			state := engine.State()
			if state.Watermark != 30 || !state.Alerted {
				t.Errorf("watermark = %d (alerted %v), want 30", state.Watermark, state.Alerted)
			}
			previous := int64(-1)
			for _, text := range sink.alerts {
				timestamp, err := strconv.ParseInt(text, 10, 64)
				if err != nil {
					t.Fatalf("unexpected alert text %q", text)
				}
				if timestamp <= previous {
					t.Errorf("alerts %v are not strictly increasing", sink.alerts)
					break
				}
				previous = timestamp
			}
			if state.Unread["A"] != 2 || sink.badges["A"] != 2 {
				t.Errorf("unread(A) = %d, badge = %d, want 2", state.Unread["A"], sink.badges["A"])
			}
			if len(sink.chimes) != 2 {
				t.Errorf("chimes = %v, want two", sink.chimes)
			}
			if state.Messages["A"] != 2 || state.Notices != 3 {
				t.Errorf("stored %d messages and %d notices, want 2 and 3", state.Messages["A"], state.Notices)
			}

			messages := engine.Query("A")
			if len(messages) != len(items) {
				t.Fatalf("Query(A) returned %d messages, want %d", len(messages), len(items))
			}
			seen := make(map[string]bool)
			for index, message := range messages {
				if seen[message.ID] {
					t.Errorf("duplicate message %s", message.ID)
				}
				seen[message.ID] = true
				if index > 0 && message.Timestamp < messages[index-1].Timestamp {
					t.Errorf("Query(A) out of order at %d: %d after %d",
						index, message.Timestamp, messages[index-1].Timestamp)
				}
			}
		})
	}
}

func TestPollForPreviousSelectionStillCounts(t *testing.T) {
	sink := newRecordingSink()
	engine := newTestEngine(sink, userA, userB)
	engine.Apply(Select{Conversation: "A"})
	engine.Apply(Select{Conversation: "B"})

	// A poll issued while A was on screen lands after the switch.
	engine.Apply(PollSnapshot{
		Scope: "A",
		Messages: []chat.Message{
			incoming("a1", "A", 100),
			incoming("a2", "A", 110),
		},
	})

	state := engine.State()
	if state.Messages["A"] != 2 {
		t.Fatalf("stored %d messages for A, want 2", state.Messages["A"])
	}
	if state.Unread["A"] != 2 {
		t.Errorf("unread(A) = %d, want 2", state.Unread["A"])
	}
	if sink.badges["A"] != 2 {
		t.Errorf("badge(A) = %d, want 2", sink.badges["A"])
	}
	if frame := sink.lastFrame(t); frame.Conversation != "B" {
		t.Errorf("last frame is for %q, want B to stay on screen", frame.Conversation)
	}
}

func TestFailedSelectLeavesSelectedUnchanged(t *testing.T) {
	engine := New(Config{IntakeBuffer: 1})

	if err := engine.Select(context.Background(), "A"); err != nil {
		t.Fatalf("Select(A): %v", err)
	}

	// The queue is full and nothing drains it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := engine.Select(ctx, "B"); err == nil {
		t.Fatal("Select(B) succeeded with a full queue and a cancelled context")
	}
	if got := engine.Selected(); got != "A" {
		t.Errorf("Selected() = %q after a failed Select, want A", got)
	}
}
