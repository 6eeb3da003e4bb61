// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustScenario builds a scenario from name and variable pairs.
func mustScenario(t *testing.T, name string, vars ...string) *Scenario {
	t.Helper()

	s, err := New(name)
	require.NoError(t, err)

	for i := 0; i < len(vars); i += 2 {
		require.NoError(t, s.Add(vars[i], vars[i+1]))
	}

	return s
}

func TestMergeAll_EmptyTuple(t *testing.T) {
	_, err := MergeAll(nil, DefaultMergeOptions())

	require.ErrorIs(t, err, ErrNoScenarios)
}

func TestMergeAll_SingleElementClones(t *testing.T) {
	a := mustScenario(t, "A", "VAR", "1")

	merged, err := MergeAll([]*Scenario{a}, DefaultMergeOptions())

	require.NoError(t, err)
	assert.Equal(t, "A", merged.Name())
	require.NoError(t, merged.Add("OTHER", "2"))
	assert.False(t, a.Has("OTHER"), "merging must not touch the inputs")
}

func TestMergeAll_DisjointVariables(t *testing.T) {
	a := mustScenario(t, "A", "A_VAR", "1")
	b := mustScenario(t, "B", "B_VAR", "2")

	merged, err := MergeAll([]*Scenario{a, b}, DefaultMergeOptions())

	require.NoError(t, err)
	assert.Equal(t, "A, B", merged.Name())
	assert.Equal(t, 2, merged.Len())

	va, _ := merged.Value("A_VAR")
	vb, _ := merged.Value("B_VAR")
	assert.Equal(t, "1", va)
	assert.Equal(t, "2", vb)
}

func TestMergeAll_CustomDelimiter(t *testing.T) {
	a := mustScenario(t, "A")
	b := mustScenario(t, "B")
	c := mustScenario(t, "C")

	merged, err := MergeAll([]*Scenario{a, b, c}, MergeOptions{Delimiter: " -- ", Strict: true})

	require.NoError(t, err)
	assert.Equal(t, "A -- B -- C", merged.Name())
}

func TestMergeAll_StrictConflict(t *testing.T) {
	a := mustScenario(t, "A1", "a_var1", "x")
	b := mustScenario(t, "B2")
	c := mustScenario(t, "C3", "a_var1", "y")

	_, err := MergeAll([]*Scenario{a, b, c}, DefaultMergeOptions())

	var conflict *MergeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "a_var1", conflict.Variable)
	assert.Equal(t, "A1", conflict.First, "attribution must name the first definer")
	assert.Equal(t, "C3", conflict.Second)
	assert.Equal(
		t,
		`variable "a_var1" defined both in scenario "A1" and in scenario "C3"`,
		err.Error(),
	)
}

func TestMergeAll_LaxOverwrites(t *testing.T) {
	a := mustScenario(t, "A", "VAR", "first", "KEEP", "yes")
	b := mustScenario(t, "B", "VAR", "second")

	merged, err := MergeAll([]*Scenario{a, b}, MergeOptions{Delimiter: ", ", Strict: false})

	require.NoError(t, err)
	v, _ := merged.Value("VAR")
	assert.Equal(t, "second", v, "the later definition wins in lax mode")
	keep, _ := merged.Value("KEEP")
	assert.Equal(t, "yes", keep)
	assert.Equal(t, "A, B", merged.Name())
}

func TestMergeAll_InputsUntouchedOnConflict(t *testing.T) {
	a := mustScenario(t, "A", "VAR", "1")
	b := mustScenario(t, "B", "VAR", "2")

	_, err := MergeAll([]*Scenario{a, b}, DefaultMergeOptions())

	require.Error(t, err)
	assert.Equal(t, "A", a.Name())
	assert.Equal(t, "B", b.Name())
	va, _ := a.Value("VAR")
	assert.Equal(t, "1", va)
}

func TestCombinations_OrderAndNames(t *testing.T) {
	groups := [][]*Scenario{
		{mustScenario(t, "1"), mustScenario(t, "2")},
		{mustScenario(t, "a"), mustScenario(t, "b")},
	}

	var names []string
	for s, err := range Combinations(groups, DefaultMergeOptions()) {
		require.NoError(t, err)
		names = append(names, s.Name())
	}

	assert.Equal(t, []string{"1, a", "1, b", "2, a", "2, b"}, names)
}

func TestCombinations_ConflictEndsSequence(t *testing.T) {
	// The first group's second scenario conflicts with the second
	// group, so two combinations succeed before the first failure.
	groups := [][]*Scenario{
		{mustScenario(t, "ok"), mustScenario(t, "bad", "VAR", "1")},
		{mustScenario(t, "x", "VAR", "2"), mustScenario(t, "y")},
	}

	var (
		names []string
		fails int
	)

	for s, err := range Combinations(groups, DefaultMergeOptions()) {
		if err != nil {
			fails++
			assert.Nil(t, s)
			continue
		}

		names = append(names, s.Name())
	}

	assert.Equal(t, []string{"ok, x", "ok, y"}, names)
	assert.Equal(t, 1, fails, "the sequence must end at the first merge failure")
}

func TestCombinations_EmptyGroupYieldsNothing(t *testing.T) {
	groups := [][]*Scenario{
		{mustScenario(t, "A")},
		{},
	}

	count := 0
	for range Combinations(groups, DefaultMergeOptions()) {
		count++
	}

	assert.Zero(t, count)
}
