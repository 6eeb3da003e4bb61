// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestProcessPool_WaitReapAll(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping shell test on windows")
	}

	defer goleak.VerifyNone(t)

	stock := NewTokenStock(3)
	pool := NewProcessPool(stock.Capacity())

	scripts := map[string]string{
		"one":   "exit 0",
		"two":   "exit 1",
		"three": "sleep 0.1",
	}

	for scenario, script := range scripts {
		token, ok := stock.Acquire()
		require.True(t, ok)

		rc, err := shellChild(scenario, script).Start(token)
		require.NoError(t, err)

		pool.Push(rc)
	}

	assert.Equal(t, 3, pool.Len())
	assert.False(t, pool.Empty())

	seen := make(map[string]int)

	for {
		fc, ok := pool.WaitReap()
		if !ok {
			break
		}

		seen[fc.Scenario] = fc.ExitCode()
		stock.Release(fc.Token())
	}

	assert.Equal(t, map[string]int{"one": 0, "two": 1, "three": 0}, seen)
	assert.Equal(t, 0, stock.Outstanding(), "expected every token back in the stock")
	assert.True(t, pool.Empty())

	pool.Close()
}

func TestProcessPool_WaitReapEmpty(t *testing.T) {
	pool := NewProcessPool(1)

	fc, ok := pool.WaitReap()
	assert.Nil(t, fc)
	assert.False(t, ok, "expected WaitReap on an empty pool to return immediately")

	pool.Close()
}

func TestProcessPool_ReapDoesNotBlock(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping shell test on windows")
	}

	defer goleak.VerifyNone(t)

	pool := NewProcessPool(1)
	assert.Empty(t, pool.Reap(), "expected nothing to reap from an empty pool")

	rc, err := shellChild("one", "exit 0").Start(Token{})
	require.NoError(t, err)

	pool.Push(rc)

	deadline := time.Now().Add(10 * time.Second)

	var reaped []*FinishedChild

	for len(reaped) == 0 {
		require.True(t, time.Now().Before(deadline), "child was never reaped")

		reaped = pool.Reap()

		time.Sleep(time.Millisecond)
	}

	require.Len(t, reaped, 1)
	assert.Equal(t, "one", reaped[0].Scenario)
	assert.True(t, pool.Empty())

	pool.Close()
}

func TestProcessPool_CloseNonEmpty(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping shell test on windows")
	}

	defer goleak.VerifyNone(t)

	pool := NewProcessPool(1)

	rc, err := shellChild("one", "sleep 0.1").Start(Token{})
	require.NoError(t, err)

	pool.Push(rc)

	assert.PanicsWithValue(t, "closing a non-empty process pool", func() {
		pool.Close()
	})

	_, ok := pool.WaitReap()
	require.True(t, ok)

	pool.Close()
}
