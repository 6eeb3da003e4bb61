// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runpool runs one child process per scenario with bounded
// concurrency. It guarantees that every child it starts is reaped,
// even when scheduling is aborted, and that it never kills a child it
// started.
package runpool

import (
	"context"
	"iter"
)

// Driver supplies the policy and the per-item work of Run. Its
// callbacks are invoked from the scheduling goroutine only.
type Driver[T any] interface {
	// MaxConcurrency caps how many children run at once. Values below
	// one are a configuration error that must be caught before Run.
	MaxConcurrency() int

	// Prepare turns an item into a spawnable invocation. A Prepare
	// error aborts scheduling.
	Prepare(ctx context.Context, item T) (*PreparedChild, error)

	// OnComplete receives each reaped child while the run is healthy.
	// Returning an error aborts scheduling; this is how fail-fast
	// policies stop the run on a child failure.
	OnComplete(ctx context.Context, fc *FinishedChild) error

	// OnScheduleFailed is called once with the error that aborted
	// scheduling, before the remaining children are drained.
	OnScheduleFailed(ctx context.Context, err error)

	// OnDrainComplete receives children reaped after the run aborted.
	// It cannot fail; the drain runs to completion regardless.
	OnDrainComplete(ctx context.Context, fc *FinishedChild)

	// OnFinish is called after every child is reaped and decides the
	// aggregate outcome of a run whose scheduling was never aborted.
	OnFinish(ctx context.Context) error
}

// Run schedules one child per item. Items arrive with an optional
// error; a non-nil item error (for example a merge conflict from a
// lazily combined scenario) aborts scheduling just like a Prepare or
// spawn failure does.
//
// Cancelling ctx stops scheduling but never kills running children:
// they are drained like on any other abort. Run returns the error that
// aborted scheduling, or the result of OnFinish.
func Run[T any](ctx context.Context, items iter.Seq2[T, error], drv Driver[T]) error {
	stock := NewTokenStock(drv.MaxConcurrency())
	pool := NewProcessPool(stock.Capacity())

	failure := schedule(ctx, items, drv, stock, pool)

	if failure != nil {
		drv.OnScheduleFailed(ctx, failure)
	}

	// Drain: every started child is reaped, no matter what. Outcomes
	// keep flowing to OnComplete until a failure occurs so that a
	// keep-going policy sees every result.
	for {
		fc, ok := pool.WaitReap()
		if !ok {
			break
		}

		stock.Release(fc.Token())

		if failure != nil {
			drv.OnDrainComplete(ctx, fc)
			continue
		}

		if err := drv.OnComplete(ctx, fc); err != nil {
			failure = err
			drv.OnScheduleFailed(ctx, err)
		}
	}

	pool.Close()

	finishErr := drv.OnFinish(ctx)

	if failure != nil {
		return failure
	}

	return finishErr
}

// schedule spawns children for items until the sequence ends or
// something fails. On return every acquired token is either travelling
// with a running child or back in the stock.
func schedule[T any](
	ctx context.Context,
	items iter.Seq2[T, error],
	drv Driver[T],
	stock *TokenStock,
	pool *ProcessPool,
) error {
	for item, itemErr := range items {
		if itemErr != nil {
			return itemErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		token, err := acquireToken(ctx, drv, stock, pool)
		if err != nil {
			return err
		}

		pc, err := drv.Prepare(ctx, item)
		if err != nil {
			stock.Release(token)
			return err
		}

		rc, err := pc.Start(token)
		if err != nil {
			stock.Release(token)
			return err
		}

		pool.Push(rc)
	}

	return nil
}

// acquireToken blocks until a token is free, reaping finished children
// while it waits. Reaped outcomes go to OnComplete, whose error aborts
// the wait.
func acquireToken[T any](
	ctx context.Context,
	drv Driver[T],
	stock *TokenStock,
	pool *ProcessPool,
) (Token, error) {
	for {
		if token, ok := stock.Acquire(); ok {
			return token, nil
		}

		fc, ok := pool.WaitReap()
		if !ok {
			// Every token is checked out, so a child must be running.
			panic("all tokens checked out with no running children")
		}

		stock.Release(fc.Token())

		if err := drv.OnComplete(ctx, fc); err != nil {
			return Token{}, err
		}
	}
}
