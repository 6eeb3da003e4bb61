// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

import "fmt"

// Token is proof of capacity checked out of a TokenStock. A child
// process may only be spawned while holding one, and it travels with
// the child until the reap returns it to the stock.
type Token struct {
	owner *TokenStock
	id    int
}

// TokenStock hands out a fixed number of concurrency tokens. It is not
// safe for concurrent use; the execution loop owns it from a single
// goroutine. Tokens belong to the stock that issued them and cannot be
// returned anywhere else.
type TokenStock struct {
	capacity int
	free     []int
	issued   map[int]struct{}
}

// NewTokenStock returns a stock of the given capacity. Zero or
// negative capacities would deadlock the execution loop, so they are a
// programmer error; validate user input before calling.
func NewTokenStock(capacity int) *TokenStock {
	if capacity < 1 {
		panic(fmt.Sprintf("invalid maximum number of tokens: %d", capacity))
	}

	free := make([]int, capacity)
	for i := range free {
		free[i] = i
	}

	return &TokenStock{
		capacity: capacity,
		free:     free,
		issued:   make(map[int]struct{}, capacity),
	}
}

// Capacity returns the total number of tokens.
func (ts *TokenStock) Capacity() int {
	return ts.capacity
}

// Outstanding returns how many tokens are currently checked out.
func (ts *TokenStock) Outstanding() int {
	return len(ts.issued)
}

// Acquire checks out a token without blocking. It returns false when
// every token is checked out.
func (ts *TokenStock) Acquire() (Token, bool) {
	if len(ts.free) == 0 {
		return Token{}, false
	}

	id := ts.free[len(ts.free)-1]
	ts.free = ts.free[:len(ts.free)-1]
	ts.issued[id] = struct{}{}

	return Token{owner: ts, id: id}, true
}

// Release returns a token to the stock. Returning a token twice, or a
// token from another stock, is a programmer error.
func (ts *TokenStock) Release(t Token) {
	if t.owner != ts {
		panic("returned a token to a stock that did not issue it")
	}

	if _, ok := ts.issued[t.id]; !ok {
		panic("returned a token twice")
	}

	delete(ts.issued, t.id)
	ts.free = append(ts.free, t.id)
}
