// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

// ProcessPool tracks started children until they are reaped. Push,
// Reap, WaitReap and Close belong to a single scheduling goroutine;
// one reaper goroutine per child delivers outcomes on an internal
// channel as children exit, so no polling is involved.
type ProcessPool struct {
	done    chan *FinishedChild
	running int
}

// NewProcessPool returns a pool able to hold up to capacity children
// at once. The capacity only sizes the completion buffer; Push itself
// never refuses a child, bounding concurrency is the token stock's
// job.
func NewProcessPool(capacity int) *ProcessPool {
	return &ProcessPool{
		done: make(chan *FinishedChild, capacity),
	}
}

// Push registers a started child and begins reaping it.
func (p *ProcessPool) Push(rc *RunningChild) {
	p.running++

	go func() {
		p.done <- rc.wait()
	}()
}

// Len returns the number of children pushed but not yet reaped.
func (p *ProcessPool) Len() int {
	return p.running
}

// Empty reports whether every pushed child has been reaped.
func (p *ProcessPool) Empty() bool {
	return p.running == 0
}

// Reap returns all children that have finished so far without
// blocking.
func (p *ProcessPool) Reap() []*FinishedChild {
	var reaped []*FinishedChild

	for {
		select {
		case fc := <-p.done:
			p.running--
			reaped = append(reaped, fc)
		default:
			return reaped
		}
	}
}

// WaitReap blocks until a child finishes and returns it. It returns
// false only when the pool is empty, so a loop of WaitReap calls is
// guaranteed to reap every child exactly once.
func (p *ProcessPool) WaitReap() (*FinishedChild, bool) {
	if p.running == 0 {
		return nil, false
	}

	fc := <-p.done
	p.running--

	return fc, true
}

// Close releases the pool. Closing a pool that still holds children
// is a programmer error: it means started processes would never be
// reaped.
func (p *ProcessPool) Close() {
	if p.running != 0 {
		panic("closing a non-empty process pool")
	}

	close(p.done)
}
