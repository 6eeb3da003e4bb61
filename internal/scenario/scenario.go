// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scenario defines named sets of environment variables, the
// file format that declares them, and the merging rules that combine
// one scenario from each input file into a single combined scenario.
package scenario

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrInvalidName is returned for scenario names that are empty or
	// contain a NUL byte.
	ErrInvalidName = errors.New("the scenario name is invalid")
	// ErrInvalidVariable is returned for variable names that are not
	// valid environment variable identifiers.
	ErrInvalidVariable = errors.New("the variable name is invalid")
	// ErrDuplicateVariable is returned when a variable name is added to
	// the same scenario twice.
	ErrDuplicateVariable = errors.New("a variable of this name has been added before")
)

// Variable names follow the usual environment identifier rules, ASCII
// only.
var variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Scenario is a named set of environment variable definitions.
// Variables keep their insertion order. The zero value is not usable,
// construct scenarios with New.
type Scenario struct {
	name string
	keys []string
	vars map[string]string
}

// New returns a scenario with the given name and no variables. Names
// must be non-empty and must not contain a NUL byte, anything else is
// allowed.
func New(name string) (*Scenario, error) {
	if name == "" || strings.ContainsRune(name, '\x00') {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return &Scenario{
		name: name,
		vars: make(map[string]string),
	}, nil
}

// Name returns the scenario name.
func (s *Scenario) Name() string {
	return s.name
}

// Len returns the number of variables defined by the scenario.
func (s *Scenario) Len() int {
	return len(s.keys)
}

// Has reports whether the scenario defines the named variable.
func (s *Scenario) Has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Value returns the value of the named variable.
func (s *Scenario) Value(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Add defines a new variable. The name must match
// [A-Za-z_][A-Za-z0-9_]* and must not have been added before.
func (s *Scenario) Add(name, value string) error {
	if !variableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidVariable, name)
	}

	if _, ok := s.vars[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, name)
	}

	s.keys = append(s.keys, name)
	s.vars[name] = value

	return nil
}

// Variables iterates over the scenario's variables in insertion order.
func (s *Scenario) Variables() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range s.keys {
			if !yield(k, s.vars[k]) {
				return
			}
		}
	}
}

// Clone returns an independent deep copy of the scenario.
func (s *Scenario) Clone() *Scenario {
	return &Scenario{
		name: s.name,
		keys: slices.Clone(s.keys),
		vars: maps.Clone(s.vars),
	}
}

// String returns the scenario name. It exists for log output.
func (s *Scenario) String() string {
	return s.name
}
