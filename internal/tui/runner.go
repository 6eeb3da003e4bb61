// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/troiganto/scenarios-sub000/internal/progress"
	"github.com/troiganto/scenarios-sub000/internal/runpool"
)

// RunFunc executes the scenario run, reporting progress to the given
// reporter. Cancelling the context stops the scheduling of new
// commands; the run still drains every started one before returning.
type RunFunc func(ctx context.Context, reporter progress.Reporter) (runpool.Results, error)

// Runner manages the TUI program and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *TUIReporter
	mutex    sync.Mutex
}

// TUIReporter implements progress.Reporter and forwards events to the
// TUI program.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *TUIReporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

var _ progress.Reporter = (*TUIReporter)(nil)

// NewRunner creates a TUI runner for a run over total combinations.
func NewRunner(total int) *Runner {
	model := NewModel(total)
	program := tea.NewProgram(model, tea.WithAltScreen())
	reporter := NewTUIReporter(program)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// Reporter returns the progress reporter feeding this TUI.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Run starts the display and executes fn with progress reporting.
//
// Quitting the display stops the scheduling of new commands but never
// kills running ones; Run keeps waiting until fn has drained them.
func (r *Runner) Run(ctx context.Context, fn RunFunc) (runpool.Results, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	schedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.model.setCancel(cancel)

	type outcome struct {
		results runpool.Results
		err     error
	}

	outcomeCh := make(chan outcome, 1)

	go func() {
		results, err := fn(schedCtx, r.reporter)
		outcomeCh <- outcome{results: results, err: err}
		r.program.Send(RunCompletedMsg{Results: results, Err: err})
	}()

	_, tuiErr := r.program.Run()
	if tuiErr != nil {
		// The display is gone; stop scheduling and drain.
		cancel()
	}

	o := <-outcomeCh
	r.reporter.Close()

	if tuiErr != nil {
		return o.results, errors.Join(o.err, tuiErr)
	}

	return o.results, o.err
}
