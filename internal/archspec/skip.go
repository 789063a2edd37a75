// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines skip connections. An entry `4_1_ga` joins the output of
// block 1 into block 4; the optional third field carries flags: `g` applies
// global pooling to block 4 before the join, `a` joins by element-wise
// addition instead of concatenation.
package archspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Skip is a single parsed skip-connection entry.
type Skip struct {
	To      int
	From    int
	Options string
	// HasOptions records whether the entry carried a third field at all.
	HasOptions bool
}

// SkipGroup is every skip connection landing on the same target block.
type SkipGroup struct {
	To      int
	Sources []int
	// GlobalPool is set when the options contain `g`.
	GlobalPool bool
	// Add is set when the options contain `a`; otherwise sources are
	// concatenated.
	Add bool
}

// Skips indexes skip groups by target block.
type Skips map[int]*SkipGroup

// For returns the group targeting block idx, or nil.
func (s Skips) For(idx int) *SkipGroup {
	if s == nil {
		return nil
	}
	return s[idx]
}

// Targets returns the target block indices in ascending order.
func (s Skips) Targets() []int {
	out := make([]int, 0, len(s))
	for to := range s {
		out = append(out, to)
	}
	sort.Ints(out)
	return out
}

// ParseSkip parses a single `to_from[_opts]` entry.
func ParseSkip(entry string) (Skip, error) {
	fields := strings.Split(entry, "_")
	if len(fields) != 2 && len(fields) != 3 {
		return Skip{}, fmt.Errorf("%w: skip %q must be to_from or to_from_opts", ErrSyntax, entry)
	}

	to, err := strconv.Atoi(fields[0])
	if err != nil || to <= 0 {
		return Skip{}, fmt.Errorf("%w: skip %q has invalid target block %q", ErrSyntax, entry, fields[0])
	}
	from, err := strconv.Atoi(fields[1])
	if err != nil || from <= 0 {
		return Skip{}, fmt.Errorf("%w: skip %q has invalid source block %q", ErrSyntax, entry, fields[1])
	}
	if from >= to {
		return Skip{}, fmt.Errorf("%w: skip %q must join an earlier block into a later one", ErrSyntax, entry)
	}

	sk := Skip{To: to, From: from}
	if len(fields) == 3 {
		sk.HasOptions = true
		sk.Options = fields[2]
		for _, r := range sk.Options {
			if r != 'g' && r != 'a' {
				return Skip{}, fmt.Errorf("%w: skip %q has unknown option %q", ErrSyntax, entry, string(r))
			}
		}
	}
	return sk, nil
}

// ParseSkips parses every entry and groups them by target block. Entries
// sharing a target must agree on their options field.
func ParseSkips(entries []string) (Skips, error) {
	groups := make(Skips)
	firsts := make(map[int]Skip)

	for _, entry := range entries {
		sk, err := ParseSkip(entry)
		if err != nil {
			return nil, err
		}

		first, seen := firsts[sk.To]
		if !seen {
			firsts[sk.To] = sk
			groups[sk.To] = &SkipGroup{
				To:         sk.To,
				GlobalPool: strings.ContainsRune(sk.Options, 'g'),
				Add:        strings.ContainsRune(sk.Options, 'a'),
			}
		} else {
			if first.HasOptions != sk.HasOptions {
				return nil, fmt.Errorf("%w: skips into block %d mix entries with and without options", ErrSyntax, sk.To)
			}
			if first.Options != sk.Options {
				return nil, fmt.Errorf("%w: skips into block %d disagree on options (%q vs %q)", ErrSyntax, sk.To, first.Options, sk.Options)
			}
		}
		groups[sk.To].Sources = append(groups[sk.To].Sources, sk.From)
	}
	return groups, nil
}
