// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"slices"
	"strings"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/troiganto/scenarios-sub000/internal/progress"
)

const (
	// commandDurationRounding rounds displayed durations to 100ms.
	commandDurationRounding = 100 * time.Millisecond
	// maxFailureLines bounds the failure tail kept for display; the
	// full results are printed after the display closes.
	maxFailureLines = 5
	maxBarWidth     = 60
	ellipsis        = "…"
)

// runningScenario holds the display state of one started scenario.
type runningScenario struct {
	started time.Time
	line    string
}

// failureLine is one entry of the failure tail.
type failureLine struct {
	scenario string
	exitCode int
	err      error
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Output  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// Model is the bubbletea model for a scenario run.
type Model struct {
	total     int
	done      int
	failed    int
	stopping  bool
	completed bool
	quitting  bool

	running  map[string]*runningScenario
	order    []string
	failures []failureLine

	width  int
	height int

	spinner spinner.Model
	bar     progressbar.Model
	styles  *Styles

	cancel context.CancelFunc
}

// NewModel creates a TUI model for a run over total combinations. A
// non-positive total hides the progress bar.
func NewModel(total int) *Model {
	styles := NewStyles()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Running),
	)

	return &Model{
		total:   total,
		running: make(map[string]*runningScenario),
		spinner: sp,
		bar:     progressbar.New(progressbar.WithDefaultGradient()),
		styles:  styles,
	}
}

// setCancel wires the function that stops the scheduling of new
// commands. It must be called before the program starts.
func (m *Model) setCancel(cancel context.CancelFunc) {
	m.cancel = cancel
}

// processEvent folds one progress event into the display state.
func (m *Model) processEvent(event progress.Event) {
	switch event.Type {
	case progress.EventStarted:
		if _, ok := m.running[event.Scenario]; ok {
			return
		}

		started := event.Timestamp
		if started.IsZero() {
			started = time.Now()
		}

		m.running[event.Scenario] = &runningScenario{started: started}
		m.order = append(m.order, event.Scenario)

	case progress.EventOutput:
		if rs, ok := m.running[event.Scenario]; ok {
			rs.line = lastLine(event.Line)
		}

	case progress.EventCompleted:
		m.finish(event.Scenario)

	case progress.EventFailed:
		m.finish(event.Scenario)
		m.failed++

		m.failures = append(m.failures, failureLine{
			scenario: event.Scenario,
			exitCode: event.ExitCode,
			err:      event.Err,
		})
		if len(m.failures) > maxFailureLines {
			m.failures = m.failures[1:]
		}
	}
}

// finish removes a scenario from the running set and counts it as done.
func (m *Model) finish(scenario string) {
	m.done++

	delete(m.running, scenario)

	m.order = slices.DeleteFunc(m.order, func(s string) bool {
		return s == scenario
	})
}

// lastLine returns the trimmed last line of output.
func lastLine(output string) string {
	output = strings.TrimSpace(output)
	if i := strings.LastIndexByte(output, '\n'); i >= 0 {
		output = output[i+1:]
	}

	return strings.TrimSpace(output)
}

// truncate shortens s to at most width display runes.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	if width == 1 {
		return ellipsis
	}

	return string(runes[:width-1]) + ellipsis
}
