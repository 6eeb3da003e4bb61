// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time terminal user interface for
// monitoring scenario runs. It shows overall progress across all
// combinations, the currently running scenarios with their latest
// output line, and the most recent failures.
//
// The TUI consumes the progress event stream. It owns the terminal
// while it runs, so command output is captured and printed after the
// display closes.
package tui
