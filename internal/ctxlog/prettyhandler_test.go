// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	tests := []struct {
		name    string
		options *slog.HandlerOptions
		opts    []Option
	}{
		{
			name:    "with nil options",
			options: nil,
			opts:    []Option{},
		},
		{
			name: "with custom options",
			options: &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			},
			opts: []Option{},
		},
		{
			name:    "with functional options",
			options: &slog.HandlerOptions{},
			opts: []Option{
				WithColour(),
				WithOutputEmptyAttrs(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(tt.options, tt.opts...)
			require.NotNil(t, handler)
			assert.NotNil(t, handler.h, "inner handler must be set")
			assert.NotNil(t, handler.b, "buffer must be set")
			assert.NotNil(t, handler.m, "mutex must be set")
			assert.NotNil(t, handler.json, "json formatter must be set")
			assert.NotNil(t, handler.writer, "writer must default to stderr")
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		options *slog.HandlerOptions
		want    bool
	}{
		{
			name:    "debug level with debug handler",
			level:   slog.LevelDebug,
			options: &slog.HandlerOptions{Level: slog.LevelDebug},
			want:    true,
		},
		{
			name:    "debug level with info handler",
			level:   slog.LevelDebug,
			options: &slog.HandlerOptions{Level: slog.LevelInfo},
			want:    false,
		},
		{
			name:    "error level with info handler",
			level:   slog.LevelError,
			options: &slog.HandlerOptions{Level: slog.LevelInfo},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(tt.options)
			got := handler.Enabled(context.Background(), tt.level)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name           string
		level          slog.Level
		message        string
		attrs          []any
		options        []Option
		expectInOutput []string
	}{
		{
			name:    "basic info message",
			level:   slog.LevelInfo,
			message: "test message",
			attrs:   []any{},
			expectInOutput: []string{
				"INFO:",
				"test message",
			},
		},
		{
			name:    "debug message with attributes",
			level:   slog.LevelDebug,
			message: "debug message",
			attrs:   []any{"key", "value", "number", 42},
			expectInOutput: []string{
				"DEBUG:",
				"debug message",
				"key",
				"value",
				"42",
			},
		},
		{
			name:    "warning message",
			level:   slog.LevelWarn,
			message: "warning message",
			attrs:   []any{},
			expectInOutput: []string{
				"WARN:",
				"warning message",
			},
		},
		{
			name:    "error message",
			level:   slog.LevelError,
			message: "error message",
			attrs:   []any{},
			expectInOutput: []string{
				"ERROR:",
				"error message",
			},
		},
		{
			name:    "message with empty attrs output enabled",
			level:   slog.LevelInfo,
			message: "test message",
			attrs:   []any{},
			options: []Option{WithOutputEmptyAttrs()},
			expectInOutput: []string{
				"INFO:",
				"test message",
				"{}", // empty JSON object should be output
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			opts := append([]Option{WithDestinationWriter(&buf)}, tt.options...)
			handler := NewPrettyHandler(&slog.HandlerOptions{
				Level: slog.LevelDebug, // Enable all levels for testing
			}, opts...)

			record := slog.NewRecord(time.Now(), tt.level, tt.message, 0)
			record.Add(tt.attrs...)

			err := handler.Handle(context.Background(), record)
			require.NoError(t, err)

			output := buf.String()
			for _, expected := range tt.expectInOutput {
				assert.Contains(t, output, expected)
			}

			assert.True(t, strings.HasSuffix(output, "\n"), "output should end with newline")
		})
	}
}

func TestPrettyHandler_Handle_WithReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	replaceAttr := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{} // Remove the timestamp
		}

		return a
	}

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceAttr,
	}, WithDestinationWriter(&buf))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "no timestamp", 0)

	err := handler.Handle(context.Background(), record)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "no timestamp")
	assert.NotContains(t, output, "[", "timestamp should be suppressed")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelInfo,
	}, WithDestinationWriter(&buf))

	derived := handler.WithAttrs([]slog.Attr{slog.String("component", "runner")})

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "with attrs", 0)

	err := derived.Handle(context.Background(), record)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "with attrs")
	assert.Contains(t, output, "component")
	assert.Contains(t, output, "runner")
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelInfo,
	}, WithDestinationWriter(&buf))

	derived := handler.WithGroup("child")

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "grouped", 0)
	record.Add("exit_code", 0)

	err := derived.Handle(context.Background(), record)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "grouped")
	assert.Contains(t, output, "child")
	assert.Contains(t, output, "exit_code")
}

func TestSuppressDefaults(t *testing.T) {
	fn := suppressDefaults(nil)

	for _, key := range []string{slog.TimeKey, slog.LevelKey, slog.MessageKey} {
		got := fn(nil, slog.String(key, "value"))
		assert.True(t, got.Equal(slog.Attr{}), "expected %q to be suppressed", key)
	}

	kept := slog.String("custom", "value")
	assert.True(t, fn(nil, kept).Equal(kept), "custom attrs must pass through")
}

func TestSuppressDefaults_WithNext(t *testing.T) {
	next := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "secret" {
			return slog.Attr{}
		}

		return a
	}

	fn := suppressDefaults(next)

	assert.True(t, fn(nil, slog.String(slog.TimeKey, "x")).Equal(slog.Attr{}))
	assert.True(t, fn(nil, slog.String("secret", "x")).Equal(slog.Attr{}))

	kept := slog.String("public", "x")
	assert.True(t, fn(nil, kept).Equal(kept))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestPrettyHandler_Handle_WriteError(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelInfo,
	}, WithDestinationWriter(failingWriter{}))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "doomed", 0)

	err := handler.Handle(context.Background(), record)
	require.ErrorIs(t, err, ErrIoWrite)
}

func TestTimeFormat(t *testing.T) {
	formatted := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC).Format(TimeFormat)
	assert.Equal(t, "[15:04:05.000]", formatted)
}
