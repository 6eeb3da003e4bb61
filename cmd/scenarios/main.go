// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the scenarios command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/troiganto/scenarios-sub000"
	"github.com/troiganto/scenarios-sub000/cmd/scenarios/print"
	"github.com/troiganto/scenarios-sub000/cmd/scenarios/run"
	"github.com/troiganto/scenarios-sub000/cmd/scenarios/show"
	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
	"github.com/troiganto/scenarios-sub000/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		print.PrintCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "scenarios",
	Description: `Scenarios runs a command once for every combination of environment
variable sets. Each scenario file defines named sets of environment variables
(scenarios); the tool forms the cartesian product of the files, merges each
combination into a single environment, and runs the command once per
combination with those variables exported.`,
	Usage:     "scenarios run -f base.ini -f load.ini -- make test",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel, func(sig os.Signal) {
		os.Exit(signalbroker.ExitCode(sig))
	})

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", scenarios.Version, scenarios.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
