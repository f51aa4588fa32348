// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strconv"
	"sync/atomic"
)

var sequence atomic.Uint64

// UniqueID returns "prefix-N" with N increasing across the process.
func UniqueID(prefix string) string {
	return prefix + "-" + strconv.FormatUint(sequence.Add(1), 10)
}
