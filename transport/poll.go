// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/lib/metrics"
)

// pollLoop fetches the selected conversation every interval and on
// each Refresh.
func (adapter *Adapter) pollLoop(ctx context.Context) {
	ticker := adapter.clock.NewTicker(adapter.pollInterval)
	defer ticker.Stop()

	initialPending := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-adapter.refresh:
		}

		delivered, err := adapter.pollOnce(ctx, initialPending)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			adapter.metrics.PollFailure()
			adapter.logger.Warn("poll failed", "error", err)
			if idle, ok := adapter.fetcher.(interface{ CloseIdleConnections() }); ok {
				idle.CloseIdleConnections()
			}
			continue
		}
		if delivered {
			initialPending = false
		}
	}
}

// pollOnce fetches and submits one snapshot. It reports whether a
// snapshot was delivered; with nothing selected it does nothing.
func (adapter *Adapter) pollOnce(ctx context.Context, initial bool) (bool, error) {
	scope := adapter.intake.Selected()
	if scope == "" {
		return false, nil
	}

	messages, err := adapter.fetcher.Messages(ctx, scope)
	if err != nil {
		return false, &Failure{Channel: metrics.ChannelPoll, Scope: scope, Err: err}
	}
	snapshot := engine.PollSnapshot{Scope: scope, Messages: messages, Initial: initial}
	if err := adapter.intake.Submit(ctx, snapshot); err != nil {
		return false, &Failure{Channel: metrics.ChannelPoll, Scope: scope, Err: err}
	}
	return true, nil
}
