// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"errors"
	"fmt"
	"path"
)

// ErrBadPattern is returned for malformed filter glob patterns.
var ErrBadPattern = errors.New("bad filter pattern")

// FilterAction decides what matching a filter pattern means.
type FilterAction uint8

const (
	// Choose keeps only scenarios whose name matches the pattern.
	Choose FilterAction = iota
	// Exclude keeps only scenarios whose name does not match.
	Exclude
)

// Filter selects scenarios by matching their names against a shell
// glob pattern (path.Match syntax, case sensitive).
type Filter struct {
	action  FilterAction
	pattern string
}

// NewFilter validates the pattern eagerly so matching can never fail
// later.
func NewFilter(action FilterAction, pattern string) (*Filter, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	return &Filter{action: action, pattern: pattern}, nil
}

// Keep reports whether the scenario survives the filter. A nil filter
// keeps everything.
func (f *Filter) Keep(s *Scenario) bool {
	if f == nil {
		return true
	}

	matched, _ := path.Match(f.pattern, s.Name())

	return matched == (f.action == Choose)
}

// Apply returns the groups with filtered scenarios removed. Groups may
// come out empty, which makes the set of combinations empty.
func (f *Filter) Apply(groups [][]*Scenario) [][]*Scenario {
	if f == nil {
		return groups
	}

	out := make([][]*Scenario, len(groups))
	for i, group := range groups {
		kept := make([]*Scenario, 0, len(group))
		for _, s := range group {
			if f.Keep(s) {
				kept = append(kept, s)
			}
		}

		out[i] = kept
	}

	return out
}
