// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
)

// Watch monitors the signal channel and handles signals.
//
// The first signal calls cancel, which stops the scheduling of new
// commands; running commands share the terminal's process group and
// receive the signal themselves, so they are drained rather than
// killed. A second signal of the same type calls force to end the
// process without waiting.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc, force func(os.Signal)) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal of type, exiting without waiting", "signal", sig.String())
			close(sigCh)
			force(sig)

			return
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, waiting for running commands", "signal", sig.String())

		seen[sig] = struct{}{}

		cancel()
	}
}
