// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/troiganto/scenarios-sub000/internal/source"
)

// ErrNoInput is returned when no scenario files are given at all.
var ErrNoInput = errors.New("no scenarios provided")

// LoadOptions control LoadGroups.
type LoadOptions struct {
	// Strict enables duplicate scenario name detection per file.
	Strict bool
	// Filter drops scenarios before combination. Nil keeps everything.
	Filter *Filter
}

// LoadGroups resolves and parses every scenario file argument, one
// group per argument, in argument order. Bad files do not stop the
// remaining files from being checked; all their errors are reported
// together.
func LoadGroups(ctx context.Context, res *source.Resolver, args []string, opts LoadOptions) ([][]*Scenario, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	var errs *multierror.Error

	groups := make([][]*Scenario, 0, len(args))
	for _, arg := range args {
		group, err := loadGroup(ctx, res, arg, opts.Strict)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		groups = append(groups, group)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return opts.Filter.Apply(groups), nil
}

func loadGroup(ctx context.Context, res *source.Resolver, arg string, strict bool) ([]*Scenario, error) {
	rc, name, err := res.Open(ctx, arg)
	if err != nil {
		return nil, err
	}

	group, parseErr := Parse(rc, name, strict)

	if err := rc.Close(); err != nil && parseErr == nil {
		return nil, fmt.Errorf("could not read %q: %w", name, err)
	}

	return group, parseErr
}
