// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package msgstore

import (
	"maps"
	"slices"
	"sort"

	"github.com/linedesk/linedesk/lib/chat"
)

// Entry is a stored message with its arrival sequence number.
type Entry struct {
	chat.Message
	Seq uint64
}

// before orders entries by timestamp, then arrival.
func (entry Entry) before(other Entry) bool {
	if entry.Timestamp != other.Timestamp {
		return entry.Timestamp < other.Timestamp
	}
	return entry.Seq < other.Seq
}

// IngestResult reports what Ingest did with a message.
type IngestResult struct {
	// Accepted is false when the id already existed in the target
	// log. A rejected message leaves the store untouched.
	Accepted bool

	// Entry is the stored entry. Zero when not accepted.
	Entry Entry
}

// log is one ordered sequence. entries is replaced, never mutated in
// place, so slices handed out in a Snapshot stay valid.
type log struct {
	ids     map[string]struct{}
	entries []Entry
}

func newLog() *log {
	return &log{ids: make(map[string]struct{})}
}

// insert adds entry after every entry with an equal or smaller
// timestamp.
func (l *log) insert(entry Entry) {
	position := sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].Timestamp > entry.Timestamp
	})
	next := make([]Entry, 0, len(l.entries)+1)
	next = append(next, l.entries[:position]...)
	next = append(next, entry)
	next = append(next, l.entries[position:]...)
	l.entries = next
	l.ids[entry.ID] = struct{}{}
}

// Store is the set of conversation logs plus the broadcast log.
type Store struct {
	sequence      uint64
	conversations map[string]*log
	notices       *log
}

// New returns an empty store.
func New() *Store {
	return &Store{
		conversations: make(map[string]*log),
		notices:       newLog(),
	}
}

// target returns the log a message belongs to, creating a
// conversation log on first use.
func (store *Store) target(message chat.Message) *log {
	if message.Kind == chat.KindNotify {
		return store.notices
	}
	conversation, ok := store.conversations[message.ConversationID]
	if !ok {
		conversation = newLog()
		store.conversations[message.ConversationID] = conversation
	}
	return conversation
}

// Ingest adds one message unless its id is already present in the
// log it belongs to. A message with no id gets the derived id first.
func (store *Store) Ingest(message chat.Message) IngestResult {
	message = message.Normalize()
	if message.Kind == chat.KindNotify {
		if _, exists := store.notices.ids[message.ID]; exists {
			return IngestResult{}
		}
	} else if conversation, ok := store.conversations[message.ConversationID]; ok {
		if _, exists := conversation.ids[message.ID]; exists {
			return IngestResult{}
		}
	}

	store.sequence++
	entry := Entry{Message: message, Seq: store.sequence}
	store.target(message).insert(entry)
	return IngestResult{Accepted: true, Entry: entry}
}

// ReplaceSnapshot merges a poll snapshot for one conversation scope.
// The result is the union by id of what was stored and what arrived;
// stored messages are never replaced or removed. Messages with no
// conversation id that are not notices are assigned to scope.
// Messages tagged with another conversation go to that conversation.
//
// It returns the newly accepted entries in snapshot order.
func (store *Store) ReplaceSnapshot(scope string, messages []chat.Message) []Entry {
	var accepted []Entry
	for _, message := range messages {
		if message.ConversationID == "" && message.Kind != chat.KindNotify {
			message.ConversationID = scope
		}
		if result := store.Ingest(message); result.Accepted {
			accepted = append(accepted, result.Entry)
		}
	}
	return accepted
}

// Query returns the messages visible in a conversation: its own log
// merged with every notice, ordered by timestamp then arrival.
func (store *Store) Query(conversationID string) []chat.Message {
	var own []Entry
	if conversation, ok := store.conversations[conversationID]; ok {
		own = conversation.entries
	}
	return Messages(Merge(own, store.notices.entries))
}

// Len returns the number of messages in a conversation's own log.
func (store *Store) Len(conversationID string) int {
	if conversation, ok := store.conversations[conversationID]; ok {
		return len(conversation.entries)
	}
	return 0
}

// NoticeCount returns the number of notices.
func (store *Store) NoticeCount() int { return len(store.notices.entries) }

// Conversations returns the ids with at least one stored message,
// sorted.
func (store *Store) Conversations() []string {
	return slices.Sorted(maps.Keys(store.conversations))
}

// Snapshot returns an immutable view of the store. It shares entry
// slices with the store, which is safe because logs are replaced
// rather than modified.
func (store *Store) Snapshot() Snapshot {
	conversations := make(map[string][]Entry, len(store.conversations))
	for id, conversation := range store.conversations {
		conversations[id] = conversation.entries
	}
	return Snapshot{conversations: conversations, notices: store.notices.entries}
}

// Snapshot is a point-in-time copy of a Store. The zero value is an
// empty snapshot.
type Snapshot struct {
	conversations map[string][]Entry
	notices       []Entry
}

// Conversation returns the conversation's own entries, in order.
func (snapshot Snapshot) Conversation(conversationID string) []Entry {
	return snapshot.conversations[conversationID]
}

// Notices returns the broadcast entries, in order.
func (snapshot Snapshot) Notices() []Entry { return snapshot.notices }

// Merge combines two ordered entry lists into one ordered by
// timestamp, then arrival.
func Merge(a, b []Entry) []Entry {
	merged := make([]Entry, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if b[0].before(a[0]) {
			merged = append(merged, b[0])
			b = b[1:]
		} else {
			merged = append(merged, a[0])
			a = a[1:]
		}
	}
	merged = append(merged, a...)
	return append(merged, b...)
}

// Messages strips sequence numbers.
func Messages(entries []Entry) []chat.Message {
	messages := make([]chat.Message, len(entries))
	for i, entry := range entries {
		messages[i] = entry.Message
	}
	return messages
}
