// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog provides a context-aware logger that can be used to log messages.
// It uses the slog package for structured logging and supports different log levels.
//
// The default is a pretty console handler that writes human-readable messages to
// stderr, keeping stdout free for scenario output.
package ctxlog
