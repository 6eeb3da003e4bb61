// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"context"
	"iter"

	"github.com/goccy/go-yaml"
	"github.com/troiganto/scenarios-sub000/internal/config"
	"github.com/troiganto/scenarios-sub000/internal/ctxlog"
	"github.com/troiganto/scenarios-sub000/internal/scenario"
	"github.com/troiganto/scenarios-sub000/internal/source"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag      = "file"
	delimiterFlag = "delimiter"
	strictFlag    = "strict"
	laxFlag       = "lax"
	chooseFlag    = "choose"
	excludeFlag   = "exclude"
	cliExitStr    = ""
)

// ShowCmd renders every combined scenario as YAML.
var ShowCmd = &cli.Command{
	Name:  "show",
	Usage: "show every combined scenario with its merged variables",
	Description: `Show the resolved scenario combinations as a YAML document, in run
order, without running anything.

Every combination is listed with its combined name and the merged
environment variables in definition order. The whole product is
resolved before anything is printed, so a merge conflict in a later
combination produces no partial output.
`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Scenario file to combine. Specify multiple times to " +
				"combine multiple files. Use \"-\" for standard input.",
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

// document is the YAML payload written by the show command.
type document struct {
	Scenarios []scenarioDoc `yaml:"scenarios"`
}

type scenarioDoc struct {
	Name      string        `yaml:"name"`
	Variables yaml.MapSlice `yaml:"variables,omitempty"`
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running show command")

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

	combos := scenario.Combinations(groups, scenario.MergeOptions{
		Delimiter: delimiter,
		Strict:    strict,
	})

	doc, err := collectDocument(combos)
	if err != nil {
		logger.Error("could not resolve scenario combinations", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		logger.Error("could not render scenario combinations", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	if _, err := cmd.Writer.Write(out); err != nil {
		logger.Error("could not write scenario combinations", "error", err)
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

// collectDocument resolves every combination eagerly so that merge
// errors surface before any output is written. Variables keep their
// merged definition order.
func collectDocument(combos iter.Seq2[*scenario.Scenario, error]) (*document, error) {
	doc := &document{}

	for combo, err := range combos {
		if err != nil {
			return nil, err
		}

		vars := make(yaml.MapSlice, 0, combo.Len())
		for name, value := range combo.Variables() {
			vars = append(vars, yaml.MapItem{Key: name, Value: value})
		}

		doc.Scenarios = append(doc.Scenarios, scenarioDoc{
			Name:      combo.Name(),
			Variables: vars,
		})
	}

	return doc, nil
}
