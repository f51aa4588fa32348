// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"strconv"
	"time"
)

// Kind classifies who produced a message. The set is closed: code
// that switches on Kind handles all four cases, and decoding an
// unknown wire value is an error rather than a silent fallthrough.
type Kind uint8

const (
	// KindIncoming is a message from the end-user.
	KindIncoming Kind = iota + 1

	// KindOutgoing is a reply typed by the operator.
	KindOutgoing

	// KindAuto is an automated bot reply.
	KindAuto

	// KindNotify is a system notice broadcast to every conversation.
	KindNotify
)

// String returns the wire name of the kind.
func (kind Kind) String() string {
	switch kind {
	case KindIncoming:
		return "incoming"
	case KindOutgoing:
		return "outgoing"
	case KindAuto:
		return "auto"
	case KindNotify:
		return "notify"
	default:
		return "kind(" + strconv.Itoa(int(kind)) + ")"
	}
}

// ParseKind maps a wire name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "incoming":
		return KindIncoming, nil
	case "outgoing":
		return KindOutgoing, nil
	case "auto":
		return KindAuto, nil
	case "notify":
		return KindNotify, nil
	default:
		return 0, fmt.Errorf("chat: unknown message kind %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (kind Kind) MarshalText() ([]byte, error) {
	if kind < KindIncoming || kind > KindNotify {
		return nil, fmt.Errorf("chat: cannot encode invalid kind %d", kind)
	}
	return []byte(kind.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (kind *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*kind = parsed
	return nil
}

// Message is one chat line. Values are immutable once constructed;
// the store copies them in and hands copies out.
type Message struct {
	// ID is the server-assigned identifier, or the derived identifier
	// when the server sent none. Use [NewMessage] or [Message.Normalize]
	// to fill it.
	ID string `json:"id"`

	// ConversationID is the counterpart user's id. Empty is allowed
	// for notices, which belong to no single conversation.
	ConversationID string `json:"conversation_id"`

	Kind Kind   `json:"kind"`
	Text string `json:"text"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// DeriveID returns the identifier used when the server supplies none:
// the conversation id and timestamp joined by a colon. Two distinct
// messages in one conversation with the same millisecond collide and
// are treated as one.
func DeriveID(conversationID string, timestamp int64) string {
	return conversationID + ":" + strconv.FormatInt(timestamp, 10)
}

// NewMessage builds a message, deriving its ID if serverID is empty.
func NewMessage(serverID, conversationID string, kind Kind, text string, timestamp int64) Message {
	message := Message{
		ID:             serverID,
		ConversationID: conversationID,
		Kind:           kind,
		Text:           text,
		Timestamp:      timestamp,
	}
	return message.Normalize()
}

// Normalize returns the message with its ID derived if it was empty.
func (message Message) Normalize() Message {
	if message.ID == "" {
		message.ID = DeriveID(message.ConversationID, message.Timestamp)
	}
	return message
}

// Time returns the timestamp as a time.Time.
func (message Message) Time() time.Time {
	return time.UnixMilli(message.Timestamp)
}

// VisibleIn reports whether the message belongs in the view of the
// given conversation: its own messages plus every notice.
func (message Message) VisibleIn(conversationID string) bool {
	return message.Kind == KindNotify || message.ConversationID == conversationID
}
