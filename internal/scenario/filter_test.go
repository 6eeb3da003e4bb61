// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilter_BadPattern(t *testing.T) {
	_, err := NewFilter(Choose, "[unclosed")

	require.ErrorIs(t, err, ErrBadPattern)
}

func TestFilterKeep(t *testing.T) {
	tests := []struct {
		name     string
		action   FilterAction
		pattern  string
		scenario string
		want     bool
	}{
		{name: "choose match", action: Choose, pattern: "lin*", scenario: "linux", want: true},
		{name: "choose non-match", action: Choose, pattern: "lin*", scenario: "darwin", want: false},
		{name: "choose is case sensitive", action: Choose, pattern: "lin*", scenario: "Linux", want: false},
		{name: "exclude match", action: Exclude, pattern: "lin*", scenario: "linux", want: false},
		{name: "exclude non-match", action: Exclude, pattern: "lin*", scenario: "darwin", want: true},
		{name: "question mark", action: Choose, pattern: "v?", scenario: "v1", want: true},
		{name: "character class", action: Choose, pattern: "v[12]", scenario: "v3", want: false},
		{name: "exact", action: Choose, pattern: "exact", scenario: "exact", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.action, tt.pattern)
			require.NoError(t, err)

			s := mustScenario(t, tt.scenario)

			assert.Equal(t, tt.want, f.Keep(s))
		})
	}
}

func TestFilterKeep_NilKeepsEverything(t *testing.T) {
	var f *Filter

	assert.True(t, f.Keep(mustScenario(t, "anything")))
}

func TestFilterApply(t *testing.T) {
	groups := [][]*Scenario{
		{mustScenario(t, "linux"), mustScenario(t, "darwin")},
		{mustScenario(t, "v1"), mustScenario(t, "v2")},
	}

	f, err := NewFilter(Exclude, "darwin")
	require.NoError(t, err)

	filtered := f.Apply(groups)

	require.Len(t, filtered, 2)
	require.Len(t, filtered[0], 1)
	assert.Equal(t, "linux", filtered[0][0].Name())
	assert.Len(t, filtered[1], 2)

	// The original groups are untouched.
	assert.Len(t, groups[0], 2)
}

func TestFilterApply_CanEmptyAGroup(t *testing.T) {
	groups := [][]*Scenario{
		{mustScenario(t, "a"), mustScenario(t, "b")},
	}

	f, err := NewFilter(Choose, "nothing-matches")
	require.NoError(t, err)

	filtered := f.Apply(groups)

	require.Len(t, filtered, 1)
	assert.Empty(t, filtered[0])
}
