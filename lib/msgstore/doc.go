// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package msgstore holds the ordered, deduplicated message logs that
// both sync channels feed.
//
// Each conversation has its own log; notices ([chat.KindNotify]) go
// to a single broadcast log instead, since they appear in every
// conversation. Within a log no two messages share an id, and entries
// are ordered by timestamp with ties kept in arrival order. Arrival
// order is a store-wide sequence number, so merging a conversation
// with the broadcast log is deterministic.
//
// The push channel delivers messages one at a time through
// [Store.Ingest]. The poll channel delivers full snapshots through
// [Store.ReplaceSnapshot], which merges by id and never drops
// anything push already delivered. Logs only grow.
//
// A Store is not safe for concurrent use. The engine owns it from a
// single goroutine.
package msgstore
