// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config resolves tool defaults from an optional YAML file and
// from environment variables. Command line flags take precedence over
// both; the resolution order is flag > environment > file > built-in.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

const (
	// DefaultFileName is the defaults file looked up in the working
	// directory when EnvConfigFile is not set.
	DefaultFileName = ".scenarios.yaml"

	// EnvConfigFile names an alternative defaults file. When set to a
	// non-empty path, the file must exist.
	EnvConfigFile = "SCENARIOS_CONFIG"

	// EnvJobs overrides the jobs setting.
	EnvJobs = "SCENARIOS_JOBS"
	// EnvDelimiter overrides the scenario name delimiter.
	EnvDelimiter = "SCENARIOS_DELIMITER"
	// EnvQuiet overrides the quiet setting.
	EnvQuiet = "SCENARIOS_QUIET"
	// EnvKeepGoing overrides the keep-going setting.
	EnvKeepGoing = "SCENARIOS_KEEP_GOING"
	// EnvTUI overrides the tui setting.
	EnvTUI = "SCENARIOS_TUI"
)

// JobsAuto is the jobs value that resolves to the number of CPUs.
const JobsAuto = "auto"

var (
	// ErrReadConfigFile is returned when the defaults file cannot be read.
	ErrReadConfigFile = errors.New("could not read config file")
	// ErrParseConfigFile is returned when the defaults file is not valid YAML.
	ErrParseConfigFile = errors.New("could not parse config file")
	// ErrInvalidJobs is returned when a jobs value is neither "auto" nor a
	// positive integer.
	ErrInvalidJobs = errors.New("invalid number of jobs")
	// ErrInvalidBool is returned when a boolean environment override does
	// not parse.
	ErrInvalidBool = errors.New("invalid boolean value")
)

// FsFactory returns the file system used to read the defaults file.
// Tests substitute an in-memory implementation.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Config carries the tool defaults that command line flags may override.
type Config struct {
	// Jobs is the maximum number of concurrently running commands,
	// either a positive integer or "auto".
	Jobs string `yaml:"jobs"`
	// Delimiter joins scenario names when combining scenario groups.
	Delimiter string `yaml:"delimiter"`
	// Quiet suppresses informational log output.
	Quiet bool `yaml:"quiet"`
	// KeepGoing runs every combination even after a command fails.
	KeepGoing bool `yaml:"keep_going"`
	// TUI enables the interactive progress display.
	TUI bool `yaml:"tui"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Jobs:      "1",
		Delimiter: ", ",
	}
}

// Load resolves the effective defaults. Values from the defaults file
// override the built-ins and environment variables override both.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.applyFile(); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// JobCount converts a jobs setting into a worker count. "auto" resolves
// to the number of CPUs; any other value must be a positive integer.
func JobCount(value string) (int, error) {
	if value == JobsAuto {
		return runtime.NumCPU(), nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidJobs, value)
	}

	return n, nil
}

func (c *Config) applyFile() error {
	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		// The implicit defaults file is optional.
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("%w %q: %w", ErrReadConfigFile, path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w %q: %w", ErrParseConfigFile, path, err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvJobs); ok {
		c.Jobs = v
	}

	if v, ok := os.LookupEnv(EnvDelimiter); ok {
		c.Delimiter = v
	}

	for _, override := range []struct {
		key string
		dst *bool
	}{
		{EnvQuiet, &c.Quiet},
		{EnvKeepGoing, &c.KeepGoing},
		{EnvTUI, &c.TUI},
	} {
		if err := applyBoolEnv(override.dst, override.key); err != nil {
			return err
		}
	}

	return nil
}

func applyBoolEnv(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w for %s: %q", ErrInvalidBool, key, v)
	}

	*dst = b

	return nil
}
