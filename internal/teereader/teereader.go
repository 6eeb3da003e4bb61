// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader captures a bounded copy of everything read through
// it while tracking the most recent output line, so a drained child
// process stream can be both recorded and summarised live.
package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// partialLimit bounds the memory spent on a line that never ends.
// Only the tail of such a line is kept for display.
const partialLimit = 4096

// LastLineTee wraps an io.Reader. Reads pass through unchanged; the
// first max bytes are recorded and the latest complete line is kept
// for progress display. It is safe for concurrent use.
type LastLineTee struct {
	r         io.Reader
	max       int64
	mu        sync.RWMutex
	buf       bytes.Buffer
	dropped   int64
	last      string
	partial   strings.Builder
	anyLine   bool
}

// New returns a tee recording up to max bytes of r. A max of zero or
// less records everything.
func New(r io.Reader, max int64) *LastLineTee {
	return &LastLineTee{r: r, max: max}
}

// Read implements io.Reader.
func (t *LastLineTee) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.mu.Lock()
		t.record(p[:n])
		t.trackLines(p[:n])
		t.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// record appends data to the capture buffer, respecting the byte cap.
func (t *LastLineTee) record(data []byte) {
	if t.max <= 0 {
		t.buf.Write(data)
		return
	}

	room := t.max - int64(t.buf.Len())
	if room <= 0 {
		t.dropped += int64(len(data))
		return
	}

	if int64(len(data)) > room {
		t.dropped += int64(len(data)) - room
		data = data[:room]
	}

	t.buf.Write(data)
}

// trackLines updates the last complete line and the partial remainder.
func (t *LastLineTee) trackLines(data []byte) {
	i := bytes.LastIndexByte(data, '\n')
	if i < 0 {
		t.appendPartial(data)
		return
	}

	completed := data[:i]
	if j := bytes.LastIndexByte(completed, '\n'); j >= 0 {
		t.last = string(completed[j+1:])
	} else {
		t.last = t.partial.String() + string(completed)
	}

	t.last = strings.TrimSuffix(t.last, "\r")
	t.anyLine = true
	t.partial.Reset()
	t.appendPartial(data[i+1:])
}

func (t *LastLineTee) appendPartial(data []byte) {
	if t.partial.Len()+len(data) <= partialLimit {
		t.partial.Write(data)
		return
	}

	// Keep only the tail of an endless line.
	combined := t.partial.String() + string(data)
	t.partial.Reset()
	t.partial.WriteString(combined[len(combined)-partialLimit:])
}

// LastLine returns the most recent complete line, or the pending
// partial line while none has completed yet. Results longer than
// maxLength (if positive) are truncated with "...".
func (t *LastLineTee) LastLine(maxLength int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	line := t.last
	if !t.anyLine {
		line = t.partial.String()
	}

	if maxLength > 0 && len(line) > maxLength {
		line = line[:maxLength] + "..."
	}

	return line
}

// Bytes returns the captured data, at most max bytes of it.
func (t *LastLineTee) Bytes() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return bytes.Clone(t.buf.Bytes())
}

// Truncated reports whether the stream outgrew the capture cap.
func (t *LastLineTee) Truncated() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.dropped > 0
}
