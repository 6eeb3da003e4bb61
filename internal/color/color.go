// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color provides ANSI control codes for the run summary and
// log output. Color is enabled when stderr is a terminal, forced on
// with FORCE_COLOR and forced off with NO_COLOR.
package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	prefix = "\033["
	suffix = "m"
	reset  = "\033[0m"

	// padding for the strings.Builder
	sbPadding = 16
)

// Code represents an ANSI control code for text formatting.
type Code int

// Control codes for text formatting.
const (
	Reset Code = iota
	Bold
	Faint
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground hi-intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled bool

func init() {
	enabled = isColorEnabled()
}

// Enabled reports whether color output is on for this process.
func Enabled() bool {
	return enabled
}

func isColorEnabled() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stderr.Fd()))
}

// ControlString returns the bare ANSI control sequence for the given
// codes, regardless of whether color is enabled.
func ControlString(codes ...Code) string {
	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	writeCodes(&sb, codes)

	return sb.String()
}

// Colorize wraps str in the given codes and a trailing reset. When
// color is disabled the string is returned unchanged.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	writeCodes(&sb, codes)
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// ColorizeNoReset wraps str in the given codes without a trailing
// reset, leaving the style open for subsequent output. When color is
// disabled the string is returned unchanged.
func ColorizeNoReset(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + sbPadding)
	writeCodes(&sb, codes)
	sb.WriteString(str)

	return sb.String()
}

func writeCodes(sb *strings.Builder, codes []Code) {
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}
