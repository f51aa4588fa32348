// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by linedesk tests.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern for channel waits, so tests never call time.After
// themselves. They are the only wall-clock timeouts in the test
// suite; everything else runs on a fake clock from lib/clock.
//
// [UniqueID] hands out distinct identifiers for message and
// transaction ids without reaching for time.Now.
package testutil
