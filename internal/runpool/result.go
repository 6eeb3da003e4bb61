// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

import "time"

// Status classifies a finished scenario run.
type Status uint8

const (
	// StatusSuccess means the child exited zero.
	StatusSuccess Status = iota
	// StatusFailed means the child failed, was signalled, or its exit
	// status could not be collected.
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the recorded outcome of one scenario's child process.
type Result struct {
	// Scenario is the combined scenario name.
	Scenario string
	// Status classifies the outcome.
	Status Status
	// ExitCode is the child's exit code, -1 when unavailable.
	ExitCode int
	// Err is the child's terminal error, nil on success.
	Err error
	// Stdout and Stderr hold captured output in capture mode.
	Stdout []byte
	Stderr []byte
	// Duration is how long the child ran.
	Duration time.Duration
}

// NewResult records the outcome of a reaped child.
func NewResult(fc *FinishedChild) *Result {
	r := &Result{
		Scenario: fc.Scenario,
		Status:   StatusSuccess,
		ExitCode: fc.ExitCode(),
		Err:      fc.Err(),
		Stdout:   fc.Stdout,
		Stderr:   fc.Stderr,
		Duration: fc.Duration(),
	}

	if r.Err != nil {
		r.Status = StatusFailed
	}

	return r
}

// Results is the ordered outcome list of a whole run, in reap order.
type Results []*Result

// HasError reports whether any scenario failed.
func (rs Results) HasError() bool {
	for _, r := range rs {
		if r.Status != StatusSuccess {
			return true
		}
	}

	return false
}

// Counts tallies successes and failures.
func (rs Results) Counts() (succeeded, failed int) {
	for _, r := range rs {
		if r.Status == StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}

	return succeeded, failed
}
