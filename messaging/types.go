// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/linedesk/linedesk/lib/chat"
)

// WireMessage is a message as the server encodes it.
type WireMessage struct {
	// ID is the server's message id. Older servers omit it.
	ID string `json:"id,omitempty"`

	// UserID is the end-user the message belongs to. Empty for
	// broadcast notices.
	UserID string `json:"user_id"`

	// Type is incoming, outgoing, auto, or notify.
	Type string `json:"type"`

	Text string `json:"text"`

	// Timestamp is seconds since the Unix epoch, with fraction.
	Timestamp float64 `json:"timestamp"`
}

// Message converts the wire form to a chat.Message.
func (wire WireMessage) Message() (chat.Message, error) {
	kind, err := chat.ParseKind(wire.Type)
	if err != nil {
		return chat.Message{}, fmt.Errorf("messaging: message %q: %w", wire.ID, err)
	}
	if math.IsNaN(wire.Timestamp) || math.IsInf(wire.Timestamp, 0) {
		return chat.Message{}, fmt.Errorf("messaging: message %q: invalid timestamp", wire.ID)
	}
	milliseconds := int64(math.Round(wire.Timestamp * 1000))
	return chat.NewMessage(wire.ID, wire.UserID, kind, wire.Text, milliseconds), nil
}

// NewWireMessage converts a chat.Message to its wire form.
func NewWireMessage(message chat.Message) WireMessage {
	return WireMessage{
		ID:        message.ID,
		UserID:    message.ConversationID,
		Type:      message.Kind.String(),
		Text:      message.Text,
		Timestamp: float64(message.Timestamp) / 1000,
	}
}

// wireProfile is one entry of the /users map.
type wireProfile struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// wireNewUser is the data of a new_user push.
type wireNewUser struct {
	UserID     string `json:"line_user_id"`
	Name       string `json:"display_name"`
	PictureURL string `json:"picture_url"`
}

// envelope is the frame format on the push channel.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Envelope types.
const (
	TypeNewMessage   = "new_message"
	TypeNewUser      = "new_user"
	TypeMessageError = "message_error"
	TypeSendMessage  = "send_message"
)

// SendRequest is the data of a send_message envelope.
type SendRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`

	// TransactionID lets the console match a message_error to the
	// reply that caused it.
	TransactionID string `json:"client_txn_id"`
}

// decodeMessages converts a snapshot response. One undecodable
// message fails the whole snapshot, which the poll loop then skips.
func decodeMessages(data []byte) ([]chat.Message, error) {
	var wire []WireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse messages: %w", err)
	}
	messages := make([]chat.Message, 0, len(wire))
	for _, item := range wire {
		message, err := item.Message()
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
