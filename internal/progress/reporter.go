// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter buffers events on a channel for a consumer goroutine.
// When the buffer is full, events are dropped rather than blocking the
// runner; progress display is best effort.
type ChannelReporter struct {
	ch        chan Event
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewChannelReporter returns a reporter with the given buffer size.
func NewChannelReporter(ctx context.Context, buffer int) *ChannelReporter {
	ctx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, buffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Report implements Reporter. It never blocks.
func (r *ChannelReporter) Report(e Event) {
	select {
	case <-r.ctx.Done():
		return
	default:
	}

	select {
	case r.ch <- e:
	default:
	}
}

// Events returns the channel consumers receive from. The channel is
// closed by Close.
func (r *ChannelReporter) Events() <-chan Event {
	return r.ch
}

// Close implements Reporter and closes the events channel. The caller
// must guarantee that no Report call is still in flight.
func (r *ChannelReporter) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		close(r.ch)
	})
}

var _ Reporter = (*ChannelReporter)(nil)
