// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/troiganto/scenarios-sub000/internal/cartesian"
	"github.com/troiganto/scenarios-sub000/internal/cmdline"
	"github.com/troiganto/scenarios-sub000/internal/config"
	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
	"github.com/troiganto/scenarios-sub000/internal/progress"
	"github.com/troiganto/scenarios-sub000/internal/runner"
	"github.com/troiganto/scenarios-sub000/internal/runpool"
	"github.com/troiganto/scenarios-sub000/internal/scenario"
	"github.com/troiganto/scenarios-sub000/internal/source"
	"github.com/troiganto/scenarios-sub000/internal/tui"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	fileFlag           = "file"
	jobsFlag           = "jobs"
	keepGoingFlag      = "keep-going"
	quietFlag          = "quiet"
	tuiFlag            = "tui"
	summaryFlag        = "summary"
	successDetailsFlag = "success-details"
	ignoreEnvFlag      = "ignore-env"
	noInsertNameFlag   = "no-insert-name"
	noExportNameFlag   = "no-export-name"
	delimiterFlag      = "delimiter"
	strictFlag         = "strict"
	laxFlag            = "lax"
	chooseFlag         = "choose"
	excludeFlag        = "exclude"
	cliExitStr         = ""
)

// RunCmd runs a command once per scenario combination.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "run a command once per scenario combination",
	Description: `Run a command once for every combination of scenarios.

Each scenario file defines named sets of environment variables. The
combinations are formed as the cartesian product of the files, in
argument order, with the last file varying fastest. For every
combination the scenario variables are merged, exported into the
child environment together with SCENARIOS_NAME, and the command is
run once. Every "{}" in the command arguments is replaced with the
combined scenario name.

Scenario file URLs use Hashicorp's go-getter syntax, which allows for
fetching files from various sources. A "-" argument reads standard
input.

The command to run follows a "--" separator.
`,
	ArgsUsage: "-- COMMAND [ARG...]",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Scenario file to combine. Specify multiple times to " +
				"combine multiple files. Use \"-\" for standard input.",
		},
		&cli.StringFlag{
			Name:    jobsFlag,
			Aliases: []string{"j"},
			Usage: "Maximum number of concurrently running commands. " +
				"Use \"auto\" for the number of CPU cores.",
			DefaultText: "1",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        keepGoingFlag,
			Aliases:     []string{"k"},
			Usage:       "Keep starting new combinations after a command fails",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        quietFlag,
			Aliases:     []string{"q"},
			Usage:       "Suppress informational log output",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Show a full-screen progress display while running",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        summaryFlag,
			Usage:       "Print a per-combination result summary at the end",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        successDetailsFlag,
			Aliases:     []string{"success"},
			Usage:       "Include successful combinations in the summary details",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        ignoreEnvFlag,
			Aliases:     []string{"I"},
			Usage:       "Do not pass the parent environment to the command",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        noInsertNameFlag,
			Usage:       "Use the command arguments verbatim, without \"{}\" substitution",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        noExportNameFlag,
			Usage:       "Do not export SCENARIOS_NAME into the child environment",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:        delimiterFlag,
			Aliases:     []string{"d"},
			Usage:       "Delimiter joining scenario names in the combined name",
			DefaultText: `", "`,
			OnlyOnce:    true,
		},
	},
	MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{
		{
			Flags: [][]cli.Flag{
				{&cli.StringFlag{
					Name:    chooseFlag,
					Aliases: []string{"c"},
					Usage:   "Keep only scenarios whose name matches this glob",
				}},
				{&cli.StringFlag{
					Name:    excludeFlag,
					Aliases: []string{"x"},
					Usage:   "Drop scenarios whose name matches this glob",
				}},
			},
		},
		{
			Flags: [][]cli.Flag{
				{&cli.BoolFlag{
					Name:  strictFlag,
					Usage: "Treat merge conflicts and duplicate names as errors (default)",
				}},
				{&cli.BoolFlag{
					Name:    laxFlag,
					Aliases: []string{"l"},
					Usage:   "Let later variable definitions win instead of erroring",
				}},
			},
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("could not load configuration", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	if cfg.Quiet || cmd.Bool(quietFlag) {
		ctxlog.LevelVar.Set(slog.LevelWarn)
	}

	jobsValue := cfg.Jobs
	if cmd.IsSet(jobsFlag) {
		jobsValue = cmd.String(jobsFlag)
	}

	jobs, err := config.JobCount(jobsValue)
	if err != nil {
		logger.Error("invalid jobs setting", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	delimiter := cfg.Delimiter
	if cmd.IsSet(delimiterFlag) {
		delimiter = cmd.String(delimiterFlag)
	}

	strict := !cmd.Bool(laxFlag)

	command := cmd.Args().Slice()
	if len(command) == 0 {
		logger.Error(`no command provided, specify it after "--"`)
		return cli.Exit(cliExitStr, 1)
	}

	files := cmd.StringSlice(fileFlag)
	if len(files) == 0 {
		logger.Error("no scenario files provided, use --file or -f")
		return cli.Exit(cliExitStr, 1)
	}

	filter, err := buildFilter(cmd.String(chooseFlag), cmd.String(excludeFlag))
	if err != nil {
		logger.Error("invalid filter pattern", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	groups, err := scenario.LoadGroups(ctx, source.NewResolver(), files, scenario.LoadOptions{
		Strict: strict,
		Filter: filter,
	})
	if err != nil {
		logger.Error("could not load scenario files", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	tmpl, err := cmdline.NewWithOptions(command, cmdline.Options{
		IgnoreEnv:  cmd.Bool(ignoreEnvFlag),
		InsertName: !cmd.Bool(noInsertNameFlag),
		ExportName: !cmd.Bool(noExportNameFlag),
		Strict:     strict,
	})
	if err != nil {
		logger.Error("invalid command line", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	useTUI, err := resolveTUI(cmd, cfg)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	combos := scenario.Combinations(groups, scenario.MergeOptions{
		Delimiter: delimiter,
		Strict:    strict,
	})

	opts := runner.Options{
		Jobs:      jobs,
		KeepGoing: cfg.KeepGoing || cmd.Bool(keepGoingFlag),
		Capture:   useTUI,
	}

	var results runpool.Results

	var runErr error

	if useTUI {
		logger.Debug("starting interactive mode")

		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		tr := tui.NewRunner(cartesian.Count(groups))
		results, runErr = tr.Run(tuiCtx, func(ctx context.Context, reporter progress.Reporter) (runpool.Results, error) {
			runOpts := opts
			runOpts.Reporter = reporter

			return runner.Run(ctx, combos, tmpl, runOpts)
		})

		buf.WriteTo(cmd.ErrWriter) //nolint:errcheck // Flush buffered log output once the display is gone.
	} else {
		results, runErr = runner.Run(ctx, combos, tmpl, opts)
	}

	if useTUI || cmd.Bool(summaryFlag) {
		wopts := runpool.DefaultOutputOptions()
		wopts.IncludeStdout = useTUI
		wopts.IncludeStderr = useTUI
		wopts.ShowSuccessDetails = cmd.Bool(successDetailsFlag)

		if err := results.WriteText(cmd.ErrWriter, wopts); err != nil {
			logger.Error("could not write results", "error", err)
			return cli.Exit(cliExitStr, 1)
		}
	}

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, runner.ErrNotAllSuccessful):
		// Aggregate child failure is an informational line, not an
		// error chain.
		logger.Info(runner.ErrNotAllSuccessful.Error())

		return cli.Exit(cliExitStr, 1)
	case errors.Is(runErr, context.Canceled):
		logger.Info("run cancelled, not every combination was started")

		return cli.Exit(cliExitStr, 1)
	default:
		logger.Error("run failed", "error", runErr)

		return cli.Exit(cliExitStr, 1)
	}
}

// buildFilter turns the choose and exclude flags into a scenario
// filter. The flags are mutually exclusive; both empty means no
// filtering.
func buildFilter(choose, exclude string) (*scenario.Filter, error) {
	switch {
	case choose != "":
		return scenario.NewFilter(scenario.Choose, choose)
	case exclude != "":
		return scenario.NewFilter(scenario.Exclude, exclude)
	default:
		return nil, nil
	}
}

// resolveTUI decides whether the interactive display runs. An explicit
// --tui without a terminal on stdout is an error; a default coming
// from the configuration is dropped silently.
func resolveTUI(cmd *cli.Command, cfg *config.Config) (bool, error) {
	if !cfg.TUI && !cmd.Bool(tuiFlag) {
		return false, nil
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return true, nil
	}

	if cmd.IsSet(tuiFlag) && cmd.Bool(tuiFlag) {
		return false, errors.New("the interactive display needs stdout to be a terminal")
	}

	return false, nil
}
