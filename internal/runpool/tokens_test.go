// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStock_AcquireUntilEmpty(t *testing.T) {
	stock := NewTokenStock(3)
	assert.Equal(t, 3, stock.Capacity())
	assert.Equal(t, 0, stock.Outstanding())

	tokens := make([]Token, 0, 3)

	for range 3 {
		token, ok := stock.Acquire()
		require.True(t, ok, "expected a free token")

		tokens = append(tokens, token)
	}

	assert.Equal(t, 3, stock.Outstanding())

	_, ok := stock.Acquire()
	assert.False(t, ok, "expected the stock to be empty")

	stock.Release(tokens[1])
	assert.Equal(t, 2, stock.Outstanding())

	token, ok := stock.Acquire()
	assert.True(t, ok, "expected the released token to be available again")

	stock.Release(token)
	stock.Release(tokens[0])
	stock.Release(tokens[2])
	assert.Equal(t, 0, stock.Outstanding())
}

func TestTokenStock_SingleToken(t *testing.T) {
	stock := NewTokenStock(1)

	token, ok := stock.Acquire()
	require.True(t, ok)

	_, ok = stock.Acquire()
	assert.False(t, ok)

	stock.Release(token)

	_, ok = stock.Acquire()
	assert.True(t, ok)
}

func TestNewTokenStock_InvalidCapacity(t *testing.T) {
	assert.PanicsWithValue(t, "invalid maximum number of tokens: 0", func() {
		NewTokenStock(0)
	})
	assert.PanicsWithValue(t, "invalid maximum number of tokens: -2", func() {
		NewTokenStock(-2)
	})
}

func TestTokenStock_ReleaseTwice(t *testing.T) {
	stock := NewTokenStock(2)

	token, ok := stock.Acquire()
	require.True(t, ok)

	stock.Release(token)

	assert.PanicsWithValue(t, "returned a token twice", func() {
		stock.Release(token)
	})
}

func TestTokenStock_ReleaseToWrongStock(t *testing.T) {
	stock := NewTokenStock(1)
	other := NewTokenStock(1)

	token, ok := other.Acquire()
	require.True(t, ok)

	assert.PanicsWithValue(t, "returned a token to a stock that did not issue it", func() {
		stock.Release(token)
	})
}
