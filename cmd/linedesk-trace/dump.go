// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/linedesk/linedesk/lib/codec"
)

// dump prints each record of a trace in diagnostic notation, one per
// line, prefixed by its index. A truncated final record is reported
// after the complete ones are printed.
func dump(data []byte, stdout io.Writer) error {
	for index := 0; len(data) > 0; index++ {
		notation, rest, err := codec.DiagnoseFirst(data)
		if err != nil {
			return fmt.Errorf("record %d: %w", index, err)
		}
		fmt.Fprintf(stdout, "%d\t%s\n", index, notation)
		data = rest
	}
	return nil
}
