// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"encoding/json"
	"testing"
)

func TestParseKind(t *testing.T) {
	for _, kind := range []Kind{KindIncoming, KindOutgoing, KindAuto, KindNotify} {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", kind.String(), err)
		}
		if parsed != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.String(), parsed, kind)
		}
	}

	if _, err := ParseKind("system"); err == nil {
		t.Error("ParseKind accepted an unknown kind")
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(Message{ID: "m1", Kind: KindAuto})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Kind != KindAuto {
		t.Errorf("Kind = %v, want auto", decoded.Kind)
	}

	if err := json.Unmarshal([]byte(`{"kind":"broadcast"}`), &decoded); err == nil {
		t.Error("Unmarshal accepted an unknown kind")
	}
	if _, err := json.Marshal(Message{}); err == nil {
		t.Error("Marshal accepted the zero kind")
	}
}

func TestNewMessageDerivesID(t *testing.T) {
	message := NewMessage("", "U1", KindIncoming, "hi", 100)
	if message.ID != "U1:100" {
		t.Errorf("ID = %q, want U1:100", message.ID)
	}

	withServerID := NewMessage("srv-7", "U1", KindIncoming, "hi", 100)
	if withServerID.ID != "srv-7" {
		t.Errorf("ID = %q, want srv-7", withServerID.ID)
	}
}

func TestVisibleIn(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		conv    string
		want    bool
	}{
		{"own conversation", Message{ConversationID: "A", Kind: KindIncoming}, "A", true},
		{"other conversation", Message{ConversationID: "B", Kind: KindOutgoing}, "A", false},
		{"notice without conversation", Message{Kind: KindNotify}, "A", true},
		{"notice tagged elsewhere", Message{ConversationID: "B", Kind: KindNotify}, "A", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.message.VisibleIn(test.conv); got != test.want {
				t.Errorf("VisibleIn(%q) = %v, want %v", test.conv, got, test.want)
			}
		})
	}
}
