// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec fixes the CBOR configuration used for linedesk's
// internal records.
//
// The server speaks JSON and that never changes. CBOR is used only
// for data linedesk writes for itself, currently the intake trace
// (lib/trace). Encoding is Core Deterministic (RFC 8949 §4.2) so the
// same event always produces the same bytes, which keeps trace files
// diffable across runs.
//
// Record types carry `cbor` struct tags with short keys. Types that
// are also sent to the server keep their `json` tags and rely on the
// library's fallback instead of doubling up.
package codec
