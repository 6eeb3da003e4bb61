// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdline turns a merged scenario and a user-supplied command
// line into a spawnable child process specification.
package cmdline

import (
	"errors"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/troiganto/scenarios-sub000/internal/printer"
	"github.com/troiganto/scenarios-sub000/internal/runpool"
	"github.com/troiganto/scenarios-sub000/internal/scenario"
)

// ScenariosNameVar is the environment variable that carries the
// combined scenario name into child processes.
const ScenariosNameVar = "SCENARIOS_NAME"

var (
	// ErrEmptyCommandLine is returned when no program is given.
	ErrEmptyCommandLine = errors.New("the command line is empty")
	// ErrReservedName is returned when a scenario defines the name
	// export variable itself while strict mode and name export are
	// both enabled.
	ErrReservedName = errors.New("bad variable name: " + ScenariosNameVar)
)

// Options customizes how child processes are built from scenarios.
type Options struct {
	// IgnoreEnv starts children in a clean environment instead of the
	// inherited one.
	IgnoreEnv bool
	// InsertName replaces the "{}" pattern in command arguments with
	// the combined scenario name.
	InsertName bool
	// ExportName defines ScenariosNameVar in the child environment.
	ExportName bool
	// Strict rejects scenarios that define ScenariosNameVar themselves
	// while ExportName is enabled. When disabled, the export silently
	// wins.
	Strict bool
}

// DefaultOptions returns the default build options: inherit the
// environment, insert and export the scenario name, and reject
// reserved-name collisions.
func DefaultOptions() Options {
	return Options{
		IgnoreEnv:  false,
		InsertName: true,
		ExportName: true,
		Strict:     true,
	}
}

// Template is a command line waiting for scenarios to run in. The
// program itself is never templated, only its arguments are.
type Template struct {
	args []string
	opts Options
}

// New wraps a command line with default options. The first element of
// args is the program to run.
func New(args []string) (*Template, error) {
	return NewWithOptions(args, DefaultOptions())
}

// NewWithOptions wraps a command line with the given options.
func NewWithOptions(args []string, opts Options) (*Template, error) {
	if len(args) == 0 {
		return nil, ErrEmptyCommandLine
	}

	return &Template{
		args: slices.Clone(args),
		opts: opts,
	}, nil
}

// Program returns the program to run.
func (t *Template) Program() string {
	return t.args[0]
}

// Args returns the full argument vector, including the program.
func (t *Template) Args() []string {
	return slices.Clone(t.args)
}

// Options returns the build options.
func (t *Template) Options() Options {
	return t.opts
}

// Prepare builds the child specification for one merged scenario. The
// caller decides capture and progress reporting on the returned child
// before spawning it.
func (t *Template) Prepare(s *scenario.Scenario) (*runpool.PreparedChild, error) {
	env, err := t.buildEnv(s)
	if err != nil {
		return nil, err
	}

	argv := slices.Clone(t.args)

	if t.opts.InsertName {
		p := printer.Printer{Terminator: ""}

		for i, arg := range argv[1:] {
			p.Template = arg
			argv[i+1] = p.Format(s.Name())
		}
	}

	return &runpool.PreparedChild{
		Scenario: s.Name(),
		Args:     argv,
		Env:      env,
	}, nil
}

// buildEnv assembles the child environment: the inherited environment
// unless ignored, overlaid with the scenario's variables, overlaid
// with the name export. Entries are sorted for reproducibility.
func (t *Template) buildEnv(s *scenario.Scenario) ([]string, error) {
	env := make(map[string]string, s.Len()+1)

	if !t.opts.IgnoreEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}

			env[key] = value
		}
	}

	for key, value := range s.Variables() {
		if t.opts.ExportName && t.opts.Strict && key == ScenariosNameVar {
			return nil, ErrReservedName
		}

		env[key] = value
	}

	if t.opts.ExportName {
		env[ScenariosNameVar] = s.Name()
	}

	entries := make([]string, 0, len(env))
	for _, key := range slices.Sorted(maps.Keys(env)) {
		entries = append(entries, key+"="+env[key])
	}

	return entries, nil
}
