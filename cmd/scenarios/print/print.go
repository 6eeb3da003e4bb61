// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package print

import (
	"context"
	"io"
	"iter"

	"github.com/troiganto/scenarios-sub000/internal/config"
	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
	"github.com/troiganto/scenarios-sub000/internal/printer"
	"github.com/troiganto/scenarios-sub000/internal/scenario"
	"github.com/troiganto/scenarios-sub000/internal/source"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag      = "file"
	formatFlag    = "format"
	print0Flag    = "print0"
	delimiterFlag = "delimiter"
	strictFlag    = "strict"
	laxFlag       = "lax"
	chooseFlag    = "choose"
	excludeFlag   = "exclude"
	cliExitStr    = ""
)

// PrintCmd lists the combined scenario names without running anything.
var PrintCmd = &cli.Command{
	Name:  "print",
	Usage: "print every combined scenario name, one per record",
	Description: `Print the name of every scenario combination, in run order, without
running anything.

Each record is the combined scenario name rendered through the format
template, where every "{}" is replaced with the name. Records end with
a newline, or with a NUL byte when --print0 is given, which makes the
output safe to pipe into "xargs -0".
`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Scenario file to combine. Specify multiple times to " +
				"combine multiple files. Use \"-\" for standard input.",
		},
		&cli.StringFlag{
			Name:        formatFlag,
			Usage:       "Record template applied to every combined name",
			DefaultText: `"` + printer.Pattern + `"`,
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        print0Flag,
			Aliases:     []string{"0"},
			Usage:       "Terminate records with a NUL byte instead of a newline",
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
	logger.Debug("running print command")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("could not load configuration", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	delimiter := cfg.Delimiter
	if cmd.IsSet(delimiterFlag) {
		delimiter = cmd.String(delimiterFlag)
	}

	strict := !cmd.Bool(laxFlag)

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

	p := printer.New()
	if cmd.IsSet(formatFlag) {
		p.Template = cmd.String(formatFlag)
	}

	if cmd.Bool(print0Flag) {
		p.Terminator = "\x00"
	}

	combos := scenario.Combinations(groups, scenario.MergeOptions{
		Delimiter: delimiter,
		Strict:    strict,
	})

	if err := printNames(cmd.Writer, combos, p); err != nil {
		logger.Error("could not print scenario names", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	return nil
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

// printNames writes one record per combination. The first merge error
// aborts the listing.
func printNames(w io.Writer, combos iter.Seq2[*scenario.Scenario, error], p *printer.Printer) error {
	for combo, err := range combos {
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, p.Format(combo.Name())); err != nil {
			return err
		}
	}

	return nil
}
