// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS signals that should end the run.
// By default it listens for os.Interrupt, syscall.SIGINT,
// syscall.SIGTERM, and syscall.SIGQUIT.
//
// It also contains a watchdog that stops the scheduling of new
// commands on the first signal and forces an exit when a second signal
// of the same type is received.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a new signal broker that listens for OS signals that should
// end the run.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// ExitCode returns the conventional exit status for a process ended by
// sig, 128 plus the signal number.
func ExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}

	return 1
}
