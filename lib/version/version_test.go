// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit = "abc1234"
	GitDirty = "false"
	if info := Info(); !strings.Contains(info, "(abc1234,") {
		t.Errorf("Info() = %q", info)
	}
	GitDirty = "true"
	if info := Info(); !strings.Contains(info, "abc1234-dirty") {
		t.Errorf("dirty Info() = %q", info)
	}
}

func TestFprint(t *testing.T) {
	var output bytes.Buffer
	Fprint(&output, "linedesk")
	text := output.String()
	if !strings.HasPrefix(text, "linedesk "+Version) {
		t.Errorf("output = %q", text)
	}
	if !strings.Contains(text, runtime.Version()) {
		t.Errorf("output missing Go version: %q", text)
	}
}
