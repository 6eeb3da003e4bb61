// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/troiganto/scenarios-sub000/internal/progress"
	"github.com/troiganto/scenarios-sub000/internal/runpool"
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// RunCompletedMsg indicates that the run has finished and the display
// should close. The full results are printed after the display closes.
type RunCompletedMsg struct {
	Results runpool.Results
	Err     error
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-4, maxBarWidth)

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		m.processEvent(msg.Event)

		return m, nil

	case RunCompletedMsg:
		m.completed = true
		m.quitting = true

		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
//
// The first q or ctrl+c stops the scheduling of new commands; running
// commands keep going and are drained. A second press leaves the
// display while the drain continues in the background.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.completed || m.stopping {
			m.quitting = true

			return m, tea.Quit
		}

		m.stopping = true
		if m.cancel != nil {
			m.cancel()
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("scenarios"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.total > 0 {
		b.WriteString(m.bar.ViewAs(float64(m.done) / float64(m.total)))
		b.WriteString("\n")
	}

	if len(m.order) > 0 {
		b.WriteString("\n")

		for _, name := range m.order {
			b.WriteString(m.renderRunning(name, m.running[name]))
			b.WriteString("\n")
		}
	}

	if len(m.failures) > 0 {
		b.WriteString("\n")

		for _, f := range m.failures {
			b.WriteString(m.renderFailure(f))
			b.WriteString("\n")
		}

		if hidden := m.failed - len(m.failures); hidden > 0 {
			b.WriteString(m.styles.Failed.Render(fmt.Sprintf("… and %d more", hidden)))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.styles.Help.Render(m.helpLine()))
	b.WriteString("\n")

	return b.String()
}

// statusLine renders the spinner and overall counters.
func (m *Model) statusLine() string {
	var counts string
	if m.total > 0 {
		counts = fmt.Sprintf("%d/%d completed", m.done, m.total)
	} else {
		counts = fmt.Sprintf("%d completed", m.done)
	}

	if m.failed > 0 {
		counts += m.styles.Failed.Render(fmt.Sprintf(", %d failed", m.failed))
	}

	if m.stopping {
		counts += m.styles.Output.Render(" (waiting for running commands)")
	}

	return m.spinner.View() + " " + counts
}

// renderRunning renders one running scenario with its latest output line.
func (m *Model) renderRunning(name string, rs *runningScenario) string {
	elapsed := time.Since(rs.started).Round(commandDurationRounding)
	left := fmt.Sprintf("⚡ %s (%s)", name, elapsed)

	out := rs.line
	if out != "" && m.width > 0 {
		avail := m.width - lipgloss.Width(left) - 3
		if avail < 4 {
			out = ""
		} else {
			out = truncate(out, avail)
		}
	}

	s := m.styles.Running.Render(left)
	if out != "" {
		s += "  " + m.styles.Output.Render(out)
	}

	return s
}

// renderFailure renders one entry of the failure tail.
func (m *Model) renderFailure(f failureLine) string {
	line := "✗ " + f.scenario

	switch {
	case f.err != nil:
		line += ": " + f.err.Error()
	case f.exitCode != 0:
		line += fmt.Sprintf(": exit code %d", f.exitCode)
	}

	if m.width > 0 {
		line = truncate(line, m.width-2)
	}

	return m.styles.Failed.Render(line)
}

// helpLine renders the key hints for the current state.
func (m *Model) helpLine() string {
	if m.stopping {
		return "waiting for running commands, press q to leave the display"
	}

	return "press q or ctrl+c to stop starting new commands"
}
