// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes sync-engine counters in Prometheus format.
//
// Collectors live on a private registry owned by [Metrics] rather
// than the global default, so tests and multiple engines in one
// process never collide. A nil *Metrics is valid and records nothing;
// components take one optionally.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linedesk/linedesk/lib/chat"
)

// Channel labels which sync path delivered a message.
type Channel string

const (
	ChannelPush Channel = "push"
	ChannelPoll Channel = "poll"
)

// Metrics holds every linedesk collector.
type Metrics struct {
	registry *prometheus.Registry

	ingested       *prometheus.CounterVec
	duplicates     *prometheus.CounterVec
	unknown        prometheus.Counter
	alerts         *prometheus.CounterVec
	pollFailures   prometheus.Counter
	pushReconnects prometheus.Counter
	sendFailures   prometheus.Counter
	unreadTotal    prometheus.Gauge
}

// New creates the collectors on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := &Metrics{
		registry: registry,
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linedesk_messages_ingested_total",
			Help: "Messages accepted into the store.",
		}, []string{"channel", "kind"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linedesk_messages_duplicate_total",
			Help: "Messages dropped because their id was already stored.",
		}, []string{"channel"}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linedesk_messages_unknown_conversation_total",
			Help: "Accepted incoming messages for conversations missing from the directory.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linedesk_alerts_total",
			Help: "Notice alerts raised, by outcome.",
		}, []string{"result"}),
		pollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linedesk_poll_failures_total",
			Help: "Snapshot polls that failed and were skipped.",
		}),
		pushReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linedesk_push_reconnects_total",
			Help: "Times the push channel was re-established after a drop.",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linedesk_send_failures_total",
			Help: "Operator replies the server rejected or that failed to send.",
		}),
		unreadTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linedesk_unread_messages",
			Help: "Unread incoming messages across all conversations.",
		}),
	}
	registry.MustRegister(
		metrics.ingested,
		metrics.duplicates,
		metrics.unknown,
		metrics.alerts,
		metrics.pollFailures,
		metrics.pushReconnects,
		metrics.sendFailures,
		metrics.unreadTotal,
	)
	return metrics
}

// Registry returns the underlying registry.
func (metrics *Metrics) Registry() *prometheus.Registry {
	if metrics == nil {
		return nil
	}
	return metrics.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (metrics *Metrics) Handler() http.Handler {
	if metrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}

// Ingested counts an accepted message.
func (metrics *Metrics) Ingested(channel Channel, kind chat.Kind) {
	if metrics == nil {
		return
	}
	metrics.ingested.WithLabelValues(string(channel), kind.String()).Inc()
}

// Duplicate counts a rejected re-delivery.
func (metrics *Metrics) Duplicate(channel Channel) {
	if metrics == nil {
		return
	}
	metrics.duplicates.WithLabelValues(string(channel)).Inc()
}

// UnknownConversation counts an incoming message outside the directory.
func (metrics *Metrics) UnknownConversation() {
	if metrics == nil {
		return
	}
	metrics.unknown.Inc()
}

// Alert counts a raised alert; err is the sink's result.
func (metrics *Metrics) Alert(err error) {
	if metrics == nil {
		return
	}
	result := "delivered"
	if err != nil {
		result = "failed"
	}
	metrics.alerts.WithLabelValues(result).Inc()
}

// PollFailure counts a skipped poll.
func (metrics *Metrics) PollFailure() {
	if metrics == nil {
		return
	}
	metrics.pollFailures.Inc()
}

// PushReconnect counts a push channel reconnect.
func (metrics *Metrics) PushReconnect() {
	if metrics == nil {
		return
	}
	metrics.pushReconnects.Inc()
}

// SendFailure counts a failed operator reply.
func (metrics *Metrics) SendFailure() {
	if metrics == nil {
		return
	}
	metrics.sendFailures.Inc()
}

// SetUnreadTotal records the current unread sum.
func (metrics *Metrics) SetUnreadTotal(total int) {
	if metrics == nil {
		return
	}
	metrics.unreadTotal.Set(float64(total))
}
