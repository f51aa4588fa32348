// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/linedesk/linedesk/lib/chat"
)

func TestCounters(t *testing.T) {
	metrics := New()
	metrics.Ingested(ChannelPush, chat.KindIncoming)
	metrics.Ingested(ChannelPush, chat.KindIncoming)
	metrics.Ingested(ChannelPoll, chat.KindNotify)
	metrics.Duplicate(ChannelPoll)
	metrics.Alert(nil)
	metrics.Alert(errors.New("no terminal"))
	metrics.PollFailure()
	metrics.SetUnreadTotal(4)

	if got := testutil.ToFloat64(metrics.ingested.WithLabelValues("push", "incoming")); got != 2 {
		t.Errorf("ingested{push,incoming} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ingested.WithLabelValues("poll", "notify")); got != 1 {
		t.Errorf("ingested{poll,notify} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.duplicates.WithLabelValues("poll")); got != 1 {
		t.Errorf("duplicates{poll} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.alerts.WithLabelValues("failed")); got != 1 {
		t.Errorf("alerts{failed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.pollFailures); got != 1 {
		t.Errorf("poll failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.unreadTotal); got != 4 {
		t.Errorf("unread total = %v, want 4", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var metrics *Metrics
	metrics.Ingested(ChannelPush, chat.KindAuto)
	metrics.Duplicate(ChannelPush)
	metrics.UnknownConversation()
	metrics.Alert(nil)
	metrics.PollFailure()
	metrics.PushReconnect()
	metrics.SendFailure()
	metrics.SetUnreadTotal(1)
	if metrics.Registry() != nil {
		t.Fatal("nil Metrics returned a registry")
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	metrics := New()
	metrics.PushReconnect()

	recorder := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(recorder.Result().Body)
	if !strings.Contains(string(body), "linedesk_push_reconnects_total 1") {
		t.Fatalf("exposition missing reconnect counter:\n%s", body)
	}
}
