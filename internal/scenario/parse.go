// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Scenario files are line oriented: "[name]" opens a scenario,
// "NAME = value" defines a variable for the scenario opened last,
// blank lines and lines starting with "#" are ignored. Leading and
// trailing whitespace never matters.

var (
	// ErrNoClosingBracket is returned for header lines whose "[" is
	// never closed.
	ErrNoClosingBracket = errors.New(`syntax error: bracket "[" not closed in header line`)
	// ErrTextAfterBracket is returned for header lines with trailing
	// text after the closing "]".
	ErrTextAfterBracket = errors.New(`syntax error: text after closing bracket "]" of a header line`)
	// ErrMissingEquals is returned for non-header lines without a "=".
	ErrMissingEquals = errors.New(`syntax error: missing equals sign "=" in variable definition`)
	// ErrDefinitionBeforeHeader is returned when a variable definition
	// precedes the first scenario header of a file.
	ErrDefinitionBeforeHeader = errors.New("variable definition before the first header")
	// ErrDuplicateScenario is returned in strict mode when one file
	// defines the same scenario name twice.
	ErrDuplicateScenario = errors.New("duplicate scenario name")
)

// maxLineSize bounds a single input line. Scenario files are written
// by hand, a megabyte per line is beyond generous.
const maxLineSize = 1024 * 1024

// ParseError is any scenario file error together with the position it
// occurred at. Line numbers are 1-based.
type ParseError struct {
	File string
	Line int
	Err  error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Err)
}

// Unwrap returns the undecorated error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads one scenario file. The filename is only used in error
// messages. In strict mode a scenario name may not repeat within the
// file. A file without headers parses to an empty group.
func Parse(r io.Reader, filename string, strict bool) ([]*Scenario, error) {
	var (
		scenarios []*Scenario
		current   *Scenario
	)

	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())

		fail := func(err error) error {
			return &ParseError{File: filename, Line: lineno, Err: err}
		}

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue

		case strings.HasPrefix(line, "["):
			name, err := parseHeader(line)
			if err != nil {
				return nil, fail(err)
			}

			if strict {
				if _, dup := seen[name]; dup {
					return nil, fail(fmt.Errorf("%w: %q", ErrDuplicateScenario, name))
				}

				seen[name] = struct{}{}
			}

			current, err = New(name)
			if err != nil {
				return nil, fail(err)
			}

			scenarios = append(scenarios, current)

		default:
			name, value, err := parseDefinition(line)
			if err != nil {
				return nil, fail(err)
			}

			if current == nil {
				return nil, fail(fmt.Errorf("%w: %s", ErrDefinitionBeforeHeader, name))
			}

			if err := current.Add(name, value); err != nil {
				return nil, fail(err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %q: %w", filename, err)
	}

	return scenarios, nil
}

// parseHeader extracts the scenario name from a "[name]" line. The
// line is already trimmed and known to start with "[". Text between
// the brackets is taken verbatim.
func parseHeader(line string) (string, error) {
	rest := line[1:]

	name, trailing, found := strings.Cut(rest, "]")
	if !found {
		return "", fmt.Errorf("%w: %q", ErrNoClosingBracket, line)
	}

	if trailing != "" {
		return "", fmt.Errorf("%w: %q", ErrTextAfterBracket, line)
	}

	return name, nil
}

// parseDefinition splits a "NAME = value" line on its first equals
// sign. The name is trimmed on the right, the value on the left, so
// inner whitespace of the value survives.
func parseDefinition(line string) (string, string, error) {
	name, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", fmt.Errorf("%w: %q", ErrMissingEquals, line)
	}

	return strings.TrimRight(name, " \t"), strings.TrimLeft(value, " \t"), nil
}
