// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/lib/metrics"
	"github.com/linedesk/linedesk/lib/netutil"
	"github.com/linedesk/linedesk/messaging"
)

// pushLoop keeps the push channel open, reconnecting with exponential
// backoff. A connection that was established resets the backoff.
func (adapter *Adapter) pushLoop(ctx context.Context) {
	backoff := adapter.reconnectMin
	for {
		connected, err := adapter.runPush(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = adapter.reconnectMin
		}

		failure := &Failure{Channel: metrics.ChannelPush, Err: err}
		if netutil.IsNormalClose(err) {
			adapter.logger.Info("push channel closed", "error", failure, "backoff", backoff)
		} else {
			adapter.logger.Warn("push channel disconnected", "error", failure, "backoff", backoff)
		}
		adapter.metrics.PushReconnect()

		select {
		case <-ctx.Done():
			return
		case <-adapter.clock.After(backoff):
		}
		backoff = min(backoff*2, adapter.reconnectMax)
	}
}

// runPush dials once and forwards pushes until the connection ends.
// It reports whether the dial succeeded.
func (adapter *Adapter) runPush(ctx context.Context) (bool, error) {
	conn, err := adapter.dial(ctx)
	if err != nil {
		return false, err
	}
	adapter.setConn(conn)
	defer func() {
		adapter.setConn(nil)
		conn.Close()
	}()

	// Anything pushed while disconnected is only recoverable by a
	// poll.
	adapter.Refresh()

	for {
		event, err := conn.Next(ctx)
		if err != nil {
			return true, err
		}
		if err := adapter.forward(ctx, event); err != nil {
			return true, err
		}
	}
}

// forward converts one push into an engine event. It returns an
// error only when the intake is gone.
func (adapter *Adapter) forward(ctx context.Context, event messaging.Event) error {
	switch event := event.(type) {
	case messaging.NewMessage:
		return adapter.intake.Submit(ctx, engine.PushMessage{Message: event.Message})
	case messaging.NewUser:
		adapter.logger.Info("new user", "user_id", event.User.ID, "name", event.User.Name)
		return adapter.intake.Submit(ctx, engine.DirectoryUpdate{User: event.User})
	case messaging.MessageError:
		adapter.metrics.SendFailure()
		adapter.logger.Warn("operator reply failed",
			"error", event.Error,
			"client_txn_id", event.TransactionID,
		)
		return nil
	default:
		adapter.logger.Debug("ignoring push event", "event", event)
		return nil
	}
}
