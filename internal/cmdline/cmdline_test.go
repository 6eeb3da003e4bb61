// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troiganto/scenarios-sub000/internal/scenario"
)

func testScenario(t *testing.T, name string, pairs ...string) *scenario.Scenario {
	t.Helper()

	s, err := scenario.New(name)
	require.NoError(t, err)

	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, s.Add(pairs[i], pairs[i+1]))
	}

	return s
}

func TestNew_EmptyCommandLine(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrEmptyCommandLine)

	_, err = NewWithOptions([]string{}, DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyCommandLine)
}

func TestNew_CopiesArgs(t *testing.T) {
	args := []string{"echo", "hello"}

	tmpl, err := New(args)
	require.NoError(t, err)

	args[1] = "changed"
	assert.Equal(t, []string{"echo", "hello"}, tmpl.Args())
	assert.Equal(t, "echo", tmpl.Program())
}

func TestPrepare_InsertsNameIntoArgs(t *testing.T) {
	tmpl, err := New([]string{"echo", "a cool {}!", "--name={}"})
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"echo", "a cool name!", "--name=name"}, pc.Args)
	assert.Equal(t, "name", pc.Scenario)
}

func TestPrepare_NeverTemplatesProgram(t *testing.T) {
	tmpl, err := New([]string{"{}", "{}"})
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"{}", "name"}, pc.Args)
}

func TestPrepare_NoInsertName(t *testing.T) {
	opts := DefaultOptions()
	opts.InsertName = false

	tmpl, err := NewWithOptions([]string{"echo", "{}"}, opts)
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"echo", "{}"}, pc.Args)
}

func TestPrepare_EnvInheritsAndOverlays(t *testing.T) {
	t.Setenv("CMDLINE_TEST_INHERITED", "yes")
	t.Setenv("CMDLINE_TEST_OVERLAID", "parent")

	tmpl, err := New([]string{"env"})
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "low, fast", "CMDLINE_TEST_OVERLAID", "child"))
	require.NoError(t, err)

	assert.Contains(t, pc.Env, "CMDLINE_TEST_INHERITED=yes")
	assert.Contains(t, pc.Env, "CMDLINE_TEST_OVERLAID=child")
	assert.NotContains(t, pc.Env, "CMDLINE_TEST_OVERLAID=parent")
	assert.Contains(t, pc.Env, "SCENARIOS_NAME=low, fast")
}

func TestPrepare_IgnoreEnv(t *testing.T) {
	t.Setenv("CMDLINE_TEST_INHERITED", "yes")

	opts := DefaultOptions()
	opts.IgnoreEnv = true

	tmpl, err := NewWithOptions([]string{"env"}, opts)
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "name", "ZED", "2", "ALPHA", "1"))
	require.NoError(t, err)

	// Only scenario variables and the name export, sorted by key.
	assert.Equal(t, []string{"ALPHA=1", "SCENARIOS_NAME=name", "ZED=2"}, pc.Env)
}

func TestPrepare_ReservedNameStrict(t *testing.T) {
	tmpl, err := New([]string{"env"})
	require.NoError(t, err)

	_, err = tmpl.Prepare(testScenario(t, "name", "SCENARIOS_NAME", "boom"))
	require.ErrorIs(t, err, ErrReservedName)
	assert.EqualError(t, err, "bad variable name: SCENARIOS_NAME")
}

func TestPrepare_ReservedNameLax(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreEnv = true
	opts.Strict = false

	tmpl, err := NewWithOptions([]string{"env"}, opts)
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "name", "SCENARIOS_NAME", "boom"))
	require.NoError(t, err)

	// The name export silently wins over the scenario's definition.
	assert.Equal(t, []string{"SCENARIOS_NAME=name"}, pc.Env)
}

func TestPrepare_ReservedNameNoExport(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnoreEnv = true
	opts.ExportName = false

	tmpl, err := NewWithOptions([]string{"env"}, opts)
	require.NoError(t, err)

	pc, err := tmpl.Prepare(testScenario(t, "name", "SCENARIOS_NAME", "mine"))
	require.NoError(t, err)

	// Without the export the scenario may define the variable itself.
	assert.Equal(t, []string{"SCENARIOS_NAME=mine"}, pc.Env)
}
