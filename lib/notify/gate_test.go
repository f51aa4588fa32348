// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"testing"

	"github.com/linedesk/linedesk/lib/chat"
)

func noticeAt(timestamp int64) chat.Message {
	return chat.NewMessage("", "", chat.KindNotify, "notice", timestamp)
}

func TestOnlyNoticesFire(t *testing.T) {
	var gate Gate
	for _, kind := range []chat.Kind{chat.KindIncoming, chat.KindOutgoing, chat.KindAuto} {
		message := chat.NewMessage("", "A", kind, "x", 100)
		if gate.Evaluate(message, true) {
			t.Errorf("%v message fired", kind)
		}
	}
	if _, fired := gate.Watermark(); fired {
		t.Error("watermark moved for non-notice messages")
	}
}

func TestInitialBatchFiresAllThenSuppresses(t *testing.T) {
	var gate Gate
	fired := 0
	for _, timestamp := range []int64{10, 20, 30} {
		if gate.Evaluate(noticeAt(timestamp), true) {
			fired++
		}
	}
	if fired != 3 {
		t.Fatalf("initial batch fired %d alerts, want 3", fired)
	}
	if watermark, _ := gate.Watermark(); watermark != 30 {
		t.Fatalf("watermark = %d, want 30", watermark)
	}

	if gate.Evaluate(noticeAt(20), false) {
		t.Fatal("re-delivered older notice fired")
	}
	if gate.Evaluate(noticeAt(30), false) {
		t.Fatal("notice at the watermark fired")
	}
	if !gate.Evaluate(noticeAt(31), false) {
		t.Fatal("newer notice did not fire")
	}
}

func TestWatermarkNeverDecreases(t *testing.T) {
	var gate Gate
	gate.Evaluate(noticeAt(50), false)
	// Initial-batch notices fire even when older, but the watermark
	// stays at the maximum.
	if !gate.Evaluate(noticeAt(5), true) {
		t.Fatal("initial-batch notice did not fire")
	}
	if watermark, _ := gate.Watermark(); watermark != 50 {
		t.Fatalf("watermark = %d, want 50", watermark)
	}
}

func TestFirstNoticeFiresOutsideInitialBatch(t *testing.T) {
	var gate Gate
	// A zero timestamp still fires on an untouched gate.
	if !gate.Evaluate(noticeAt(0), false) {
		t.Fatal("first notice did not fire")
	}
	if gate.Evaluate(noticeAt(0), false) {
		t.Fatal("second notice at the same timestamp fired")
	}
}
