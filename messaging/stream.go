// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/linedesk/linedesk/lib/chat"
)

// streamReadLimit bounds a single push frame. Frames carry one
// message or one profile.
const streamReadLimit = 1 << 20

// StreamConfig holds configuration for Dial.
type StreamConfig struct {
	// URL is the ws:// or wss:// push endpoint.
	URL string

	// Token, if set, is sent as a bearer token in the handshake.
	Token string

	// HTTPClient is used for the handshake. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Event is one decoded push. The implementations are [NewMessage],
// [NewUser], and [MessageError].
type Event interface {
	pushEvent()
}

// NewMessage carries a message the server just stored.
type NewMessage struct {
	Message chat.Message
}

// NewUser carries a profile the server just learned.
type NewUser struct {
	User chat.User
}

// MessageError reports that an operator reply could not be delivered.
type MessageError struct {
	Error         string `json:"error"`
	TransactionID string `json:"client_txn_id,omitempty"`
}

func (NewMessage) pushEvent()   {}
func (NewUser) pushEvent()      {}
func (MessageError) pushEvent() {}

// Stream is one push channel connection. Next must be called from a
// single goroutine; Send may be called concurrently with Next.
type Stream struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

// Dial opens the push channel.
func Dial(ctx context.Context, config StreamConfig) (*Stream, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("messaging: stream URL is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	header := http.Header{}
	if config.Token != "" {
		header.Set("Authorization", "Bearer "+config.Token)
	}
	conn, response, err := websocket.Dial(ctx, config.URL, &websocket.DialOptions{
		HTTPClient: config.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("messaging: dialing %s: %w", config.URL,
				&ServerError{StatusCode: response.StatusCode, Method: http.MethodGet, Path: config.URL, Message: err.Error()})
		}
		return nil, fmt.Errorf("messaging: dialing %s: %w", config.URL, err)
	}
	conn.SetReadLimit(streamReadLimit)

	logger.Info("push channel connected", "url", config.URL)
	return &Stream{conn: conn, logger: logger}, nil
}

// Next blocks until the next push the console understands. Frames
// with an unknown type or an undecodable payload are logged and
// skipped; they do not end the stream.
func (stream *Stream) Next(ctx context.Context) (Event, error) {
	for {
		var frame envelope
		if err := wsjson.Read(ctx, stream.conn, &frame); err != nil {
			return nil, fmt.Errorf("messaging: reading push channel: %w", err)
		}

		event, err := decodeEvent(frame)
		if err != nil {
			stream.logger.Warn("skipping undecodable push frame",
				"type", frame.Type,
				"error", err,
			)
			continue
		}
		if event == nil {
			stream.logger.Debug("ignoring push frame", "type", frame.Type)
			continue
		}
		return event, nil
	}
}

// decodeEvent returns nil, nil for frame types the console does not
// handle.
func decodeEvent(frame envelope) (Event, error) {
	switch frame.Type {
	case TypeNewMessage:
		var wire WireMessage
		if err := json.Unmarshal(frame.Data, &wire); err != nil {
			return nil, err
		}
		message, err := wire.Message()
		if err != nil {
			return nil, err
		}
		return NewMessage{Message: message}, nil

	case TypeNewUser:
		var wire wireNewUser
		if err := json.Unmarshal(frame.Data, &wire); err != nil {
			return nil, err
		}
		if wire.UserID == "" {
			return nil, fmt.Errorf("new_user without line_user_id")
		}
		return NewUser{User: chat.User{ID: wire.UserID, Name: wire.Name, PictureURL: wire.PictureURL}}, nil

	case TypeMessageError:
		var event MessageError
		if err := json.Unmarshal(frame.Data, &event); err != nil {
			return nil, err
		}
		return event, nil

	default:
		return nil, nil
	}
}

// Send asks the server to deliver an operator reply. The server
// echoes the stored message back as a new_message push. It returns
// the transaction id a later MessageError will carry.
func (stream *Stream) Send(ctx context.Context, conversationID, text string) (string, error) {
	if conversationID == "" {
		return "", fmt.Errorf("messaging: conversation id is required")
	}
	request := SendRequest{
		UserID:        conversationID,
		Text:          text,
		TransactionID: uuid.NewString(),
	}
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("messaging: encoding send request: %w", err)
	}
	if err := wsjson.Write(ctx, stream.conn, envelope{Type: TypeSendMessage, Data: data}); err != nil {
		return "", fmt.Errorf("messaging: sending reply to %s: %w", conversationID, err)
	}
	stream.logger.Debug("sent operator reply",
		"conversation", conversationID,
		"client_txn_id", request.TransactionID,
	)
	return request.TransactionID, nil
}

// Close closes the connection with a normal closure.
func (stream *Stream) Close() error {
	return stream.conn.Close(websocket.StatusNormalClosure, "")
}
