// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"runtime"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFs replaces the package file system with an in-memory one holding
// the given files.
func stubFs(t *testing.T, files map[string]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)
}

// clearEnv neutralises every environment override for the test.
// t.Setenv registers the restore, then the variable is removed so the
// test observes a clean environment.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{EnvConfigFile, EnvJobs, EnvDelimiter, EnvQuiet, EnvKeepGoing, EnvTUI} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "1", cfg.Jobs)
	assert.Equal(t, ", ", cfg.Delimiter)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.KeepGoing)
	assert.False(t, cfg.TUI)
}

func TestLoad_NoFileNoEnv(t *testing.T) {
	clearEnv(t)
	stubFs(t, nil)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	stubFs(t, map[string]string{
		DefaultFileName: "jobs: auto\ndelimiter: \" / \"\nkeep_going: true\n",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Jobs)
	assert.Equal(t, " / ", cfg.Delimiter)
	assert.False(t, cfg.Quiet)
	assert.True(t, cfg.KeepGoing)
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearEnv(t)
	stubFs(t, map[string]string{
		"/etc/scenarios/defaults.yaml": "quiet: true\n",
	})
	t.Setenv(EnvConfigFile, "/etc/scenarios/defaults.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	clearEnv(t)
	stubFs(t, nil)
	t.Setenv(EnvConfigFile, "/nowhere/defaults.yaml")

	_, err := Load()
	require.ErrorIs(t, err, ErrReadConfigFile)
	assert.ErrorContains(t, err, "/nowhere/defaults.yaml")
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	stubFs(t, map[string]string{
		DefaultFileName: "jobs: [unterminated\n",
	})

	_, err := Load()
	require.ErrorIs(t, err, ErrParseConfigFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	stubFs(t, map[string]string{
		DefaultFileName: "jobs: \"4\"\ntui: true\n",
	})
	t.Setenv(EnvJobs, "8")
	t.Setenv(EnvDelimiter, "+")
	t.Setenv(EnvTUI, "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8", cfg.Jobs)
	assert.Equal(t, "+", cfg.Delimiter)
	assert.False(t, cfg.TUI)
}

func TestLoad_BoolEnvVariants(t *testing.T) {
	clearEnv(t)
	stubFs(t, nil)
	t.Setenv(EnvQuiet, "1")
	t.Setenv(EnvKeepGoing, "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.KeepGoing)
}

func TestLoad_BadBoolEnv(t *testing.T) {
	clearEnv(t)
	stubFs(t, nil)
	t.Setenv(EnvQuiet, "yes please")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalidBool)
	assert.ErrorContains(t, err, EnvQuiet)
}

func TestJobCount(t *testing.T) {
	testcases := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{
			name:  "one",
			value: "1",
			want:  1,
		},
		{
			name:  "many",
			value: "16",
			want:  16,
		},
		{
			name:  "auto",
			value: JobsAuto,
			want:  runtime.NumCPU(),
		},
		{
			name:    "zero",
			value:   "0",
			wantErr: true,
		},
		{
			name:    "negative",
			value:   "-3",
			wantErr: true,
		},
		{
			name:    "garbage",
			value:   "lots",
			wantErr: true,
		},
		{
			name:    "empty",
			value:   "",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := JobCount(tc.value)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidJobs)
				assert.ErrorContains(t, err, tc.value)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
