// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/troiganto/scenarios-sub000/internal/color"
)

// OutputOptions controls what is included in the summary output.
type OutputOptions struct {
	IncludeStdout      bool // Whether to include captured stdout in the output
	IncludeStderr      bool // Whether to include captured stderr in the output
	ColorOutput        bool // Whether to emit ANSI color codes
	ShowSuccessDetails bool // Whether to show details for successful scenarios
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdout:      false,
		IncludeStderr:      true,
		ColorOutput:        color.Enabled(),
		ShowSuccessDetails: false,
	}
}

// WriteText writes formatted results to the provided writer.
func WriteText(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResult(w, r, options); err != nil {
			return err
		}
	}

	return nil
}

// WriteText writes the results to the specified writer with the specified options.
func (rs Results) WriteText(w io.Writer, options *OutputOptions) error {
	return WriteText(w, rs, options)
}

func writeResult(w io.Writer, r *Result, options *OutputOptions) error {
	colorize := func(str string, codes ...color.Code) string {
		if !options.ColorOutput {
			return str
		}

		return color.Colorize(str, codes...)
	}
	control := func(codes ...color.Code) string {
		if !options.ColorOutput {
			return ""
		}

		return color.ControlString(codes...)
	}

	var statusStr, labelPrefix string

	switch r.Status {
	case StatusFailed:
		statusStr = colorize("✗", color.FgRed)               // Red X
		labelPrefix = control(color.Bold, color.FgRed)       // Bold red
	case StatusSuccess:
		statusStr = colorize("✓", color.FgGreen)             // Green checkmark
		labelPrefix = control(color.Bold, color.FgGreen)     // Bold green
	default:
		statusStr = colorize("?", color.FgWhite) // White question mark for unknown status
	}

	label := r.Scenario
	if label == "" {
		label = "[unnamed]"
	}

	if _, err := fmt.Fprintf(
		w,
		"%s %s%s%s",
		statusStr,
		labelPrefix,
		label,
		control(color.Reset),
	); err != nil {
		return err
	}

	if r.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", r.ExitCode) // nolint:errcheck
	}

	fmt.Fprintf(w, " %s\n", colorize(formatDuration(r.Duration), color.Faint)) // nolint:errcheck

	if r.Err != nil {
		fmt.Fprintf( // nolint:errcheck
			w,
			"  %s %s%s\n",
			colorize("➜ Error:", color.FgRed),
			r.Err.Error(),
			control(color.Reset),
		)
	}

	// Show details only for failed scenarios or if explicitly asked to show success details.
	shouldShowDetails := r.Status != StatusSuccess || options.ShowSuccessDetails

	if shouldShowDetails && options.IncludeStdout && len(r.Stdout) > 0 {
		fmt.Fprintf(w, "  ➜ Output:\n")                       // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.Stdout, "     ")) // nolint:errcheck
	}

	if shouldShowDetails && options.IncludeStderr && len(r.Stderr) > 0 {
		fmt.Fprintf(w, "  %s\n", colorize("➜ Error Output:", color.FgHiRed)) // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.Stderr, "     "))                // nolint:errcheck
	}

	return nil
}

// formatOutput formats multi-line output with proper indentation.
func formatOutput(output []byte, indent string) string {
	sb := strings.Builder{}
	lines := strings.Split(string(output), "\n")
	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n") // Preserve empty lines
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}
