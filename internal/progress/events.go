// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries live execution events from the scenario
// runner to interested consumers such as the TUI.
package progress

import "time"

// EventType identifies what happened to a scenario.
type EventType int

const (
	// EventStarted fires when a scenario's child process is spawned.
	EventStarted EventType = iota
	// EventOutput carries the latest output line of a running child.
	EventOutput
	// EventCompleted fires when a child finishes successfully.
	EventCompleted
	// EventFailed fires when a child fails or cannot be checked.
	EventFailed
)

// String implements fmt.Stringer.
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one progress notification.
type Event struct {
	// Scenario is the combined scenario name the event belongs to.
	Scenario string
	// Type says what happened.
	Type EventType
	// Timestamp is when the event was produced.
	Timestamp time.Time
	// Line is the latest output line for EventOutput events.
	Line string
	// ExitCode is set for EventCompleted and EventFailed events.
	ExitCode int
	// Err is set for EventFailed events.
	Err error
}

// Reporter consumes progress events. Implementations must tolerate
// concurrent Report calls and must never block the caller for long.
type Reporter interface {
	Report(Event)
	Close()
}

// NullReporter discards all events.
type NullReporter struct{}

// Report implements Reporter.
func (NullReporter) Report(Event) {}

// Close implements Reporter.
func (NullReporter) Close() {}

var _ Reporter = NullReporter{}
