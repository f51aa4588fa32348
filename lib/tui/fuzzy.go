// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one pattern against one
// string. A zero Score means no match.
type FuzzyResult struct {
	Score int

	// Positions are the rune indices of the matched characters in
	// ascending order.
	Positions []int
}

var fuzzyInit sync.Once

// FuzzyMatch scores text against pattern with fzf's V2 algorithm.
// Matching is case-insensitive. The slab may be nil; callers matching
// many strings in a row pass one to avoid per-call allocation.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	chars := util.ToChars([]byte(strings.ToLower(text)))
	lowered := []rune(strings.ToLower(string(pattern)))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		match.Positions = append([]int(nil), (*positions)...)
		// fzf reports positions in reverse order.
		for i, j := 0, len(match.Positions)-1; i < j; i, j = i+1, j-1 {
			match.Positions[i], match.Positions[j] = match.Positions[j], match.Positions[i]
		}
	}
	return match
}
