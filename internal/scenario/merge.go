// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"errors"
	"fmt"
	"iter"

	"github.com/troiganto/scenarios-sub000/internal/cartesian"
)

// DefaultDelimiter joins the names of merged scenarios.
const DefaultDelimiter = ", "

// ErrNoScenarios is returned when MergeAll receives an empty tuple.
// Callers are expected to guard against this themselves.
var ErrNoScenarios = errors.New("scenario merge: no scenarios provided")

// MergeOptions control how scenario tuples are combined.
type MergeOptions struct {
	// Delimiter joins the scenario names of a tuple.
	Delimiter string
	// Strict makes a variable defined by more than one scenario of a
	// tuple an error. When false, later definitions win.
	Strict bool
}

// DefaultMergeOptions returns the options used when no flags say
// otherwise: strict merging with names joined by ", ".
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{
		Delimiter: DefaultDelimiter,
		Strict:    true,
	}
}

// MergeConflictError reports a variable defined by two scenarios of the
// same tuple during a strict merge. First is the scenario that defined
// the variable first in tuple order, Second the one that clashed with
// it.
type MergeConflictError struct {
	Variable string
	First    string
	Second   string
}

// Error implements error.
func (e *MergeConflictError) Error() string {
	return fmt.Sprintf(
		"variable %q defined both in scenario %q and in scenario %q",
		e.Variable, e.First, e.Second,
	)
}

// MergeAll folds a tuple of scenarios into one combined scenario. The
// first element is cloned, then every following scenario is merged
// into the accumulator: variables first, then the name is appended
// with the delimiter. The input scenarios are never modified.
func MergeAll(tuple []*Scenario, opts MergeOptions) (*Scenario, error) {
	if len(tuple) == 0 {
		return nil, ErrNoScenarios
	}

	merged := tuple[0].Clone()
	for _, next := range tuple[1:] {
		if err := mergeInto(merged, next, tuple, opts); err != nil {
			return nil, err
		}
	}

	return merged, nil
}

func mergeInto(acc, next *Scenario, tuple []*Scenario, opts MergeOptions) error {
	for name, value := range next.Variables() {
		if acc.Has(name) {
			if opts.Strict {
				return &MergeConflictError{
					Variable: name,
					First:    firstDefiner(tuple, name),
					Second:   next.name,
				}
			}

			// Lax merge, the later definition wins.
			acc.vars[name] = value

			continue
		}

		acc.keys = append(acc.keys, name)
		acc.vars[name] = value
	}

	acc.name = acc.name + opts.Delimiter + next.name

	return nil
}

// firstDefiner scans the untouched tuple in order for conflict
// attribution. By the time a conflict is detected at least one earlier
// tuple element defines the variable.
func firstDefiner(tuple []*Scenario, variable string) string {
	for _, s := range tuple {
		if s.Has(variable) {
			return s.name
		}
	}

	return ""
}

// Combinations lazily yields the merged scenario of every combination
// of the given groups, one scenario per group, with the last group
// varying fastest. A merge conflict is yielded as the error of its
// combination and ends the sequence.
func Combinations(groups [][]*Scenario, opts MergeOptions) iter.Seq2[*Scenario, error] {
	return func(yield func(*Scenario, error) bool) {
		for tuple := range cartesian.Product(groups) {
			merged, err := MergeAll(tuple, opts)
			if !yield(merged, err) || err != nil {
				return
			}
		}
	}
}
