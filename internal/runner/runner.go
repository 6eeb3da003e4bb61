// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner executes a command line once per merged scenario,
// with bounded concurrency and a fail-fast or keep-going policy.
package runner

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/troiganto/scenarios-sub000/internal/cmdline"
	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
	"github.com/troiganto/scenarios-sub000/internal/progress"
	"github.com/troiganto/scenarios-sub000/internal/runpool"
	"github.com/troiganto/scenarios-sub000/internal/scenario"
)

// ErrNotAllSuccessful is returned after a keep-going run in which at
// least one scenario failed. Every child has run and been reaped by
// the time it is returned.
var ErrNotAllSuccessful = errors.New("not all scenarios completed successfully")

// Options customizes a run.
type Options struct {
	// Jobs caps how many children run at once. It must be at least
	// one; validate user input before calling Run.
	Jobs int
	// KeepGoing keeps scheduling after a child fails. The run then
	// ends with ErrNotAllSuccessful instead of the first child error.
	KeepGoing bool
	// Capture redirects child output into bounded buffers instead of
	// the inherited stdio.
	Capture bool
	// Reporter receives progress events. Nil disables reporting.
	Reporter progress.Reporter
}

// Run executes the command line template once per combined scenario.
// It returns the outcome of every child that ran, in reap order, and
// the error that decided the run: the aborting error, or
// ErrNotAllSuccessful after a keep-going run with failures.
func Run(
	ctx context.Context,
	combos iter.Seq2[*scenario.Scenario, error],
	tmpl *cmdline.Template,
	opts Options,
) (runpool.Results, error) {
	drv := &driver{tmpl: tmpl, opts: opts}

	err := runpool.Run(ctx, combos, drv)

	return drv.results, err
}

// driver implements runpool.Driver. All callbacks run on the
// scheduling goroutine, so its fields need no locking.
type driver struct {
	tmpl        *cmdline.Template
	opts        Options
	results     runpool.Results
	childFailed bool
}

var _ runpool.Driver[*scenario.Scenario] = (*driver)(nil)

func (d *driver) MaxConcurrency() int {
	return d.opts.Jobs
}

func (d *driver) Prepare(ctx context.Context, s *scenario.Scenario) (*runpool.PreparedChild, error) {
	pc, err := d.tmpl.Prepare(s)
	if err != nil {
		return nil, err
	}

	pc.Capture = d.opts.Capture
	pc.Reporter = d.opts.Reporter

	ctxlog.Debug(ctx, "starting scenario", "scenario", pc.Scenario, "program", pc.Args[0])
	d.report(progress.Event{
		Scenario:  pc.Scenario,
		Type:      progress.EventStarted,
		Timestamp: time.Now(),
	})

	return pc, nil
}

func (d *driver) OnComplete(ctx context.Context, fc *runpool.FinishedChild) error {
	res := d.record(fc)

	err := fc.Err()
	if err == nil {
		ctxlog.Debug(ctx, "scenario completed",
			"scenario", res.Scenario,
			"duration", res.Duration.String(),
		)

		return nil
	}

	if !d.opts.KeepGoing {
		// Fail fast: abort scheduling with the child's error. The
		// caller logs it, so it is not logged here.
		return err
	}

	d.childFailed = true
	ctxlog.Error(ctx, "scenario failed",
		"scenario", res.Scenario,
		"error", childCause(err).Error(),
	)

	return nil
}

func (d *driver) OnScheduleFailed(ctx context.Context, err error) {
	if d.opts.Jobs > 1 {
		ctxlog.Info(ctx, "waiting for unfinished child processes")
	}

	ctxlog.Debug(ctx, "scheduling stopped", "error", err.Error())
}

func (d *driver) OnDrainComplete(ctx context.Context, fc *runpool.FinishedChild) {
	res := d.record(fc)

	if err := fc.Err(); err != nil {
		ctxlog.Error(ctx, "scenario failed",
			"scenario", res.Scenario,
			"error", childCause(err).Error(),
		)
	}
}

func (d *driver) OnFinish(context.Context) error {
	if d.childFailed {
		return ErrNotAllSuccessful
	}

	return nil
}

// record turns a reaped child into a result and reports the outcome.
func (d *driver) record(fc *runpool.FinishedChild) *runpool.Result {
	res := runpool.NewResult(fc)
	d.results = append(d.results, res)

	e := progress.Event{
		Scenario:  res.Scenario,
		Timestamp: time.Now(),
		ExitCode:  res.ExitCode,
	}

	if res.Status == runpool.StatusSuccess {
		e.Type = progress.EventCompleted
	} else {
		e.Type = progress.EventFailed
		e.Err = res.Err
	}

	d.report(e)

	return res
}

func (d *driver) report(e progress.Event) {
	if d.opts.Reporter == nil {
		return
	}

	d.opts.Reporter.Report(e)
}

// childCause strips the scenario attribution from a child error, for
// log lines that carry the scenario as its own attribute.
func childCause(err error) error {
	var childErr *runpool.ChildError
	if errors.As(err, &childErr) {
		return childErr.Err
	}

	return err
}
