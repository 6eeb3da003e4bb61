// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source resolves scenario file arguments. An argument is
// either "-" for standard input, a local file path, or a go-getter URL
// (git::, https, s3 and friends), which is fetched into a temporary
// directory and read from there.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
)

// StdinName is how standard input appears in error locations.
const StdinName = "<stdin>"

const (
	getterPathSeparator = "//"
	getterRefSeparator  = "?"
	// Minimum parts in a go-getter URL: scheme, host, and path.
	minimumGetterParts = 3
)

var (
	// ErrFetch wraps every failure to retrieve a remote scenario file.
	ErrFetch = errors.New("could not fetch scenario file")
	// ErrOpen wraps every failure to open a local scenario file.
	ErrOpen = errors.New("could not open scenario file")
)

// Resolver opens scenario file arguments. The zero value is not
// usable, construct with NewResolver.
type Resolver struct {
	fs    afero.Fs
	stdin io.Reader
}

// NewResolver returns a resolver backed by the OS filesystem and
// standard input.
func NewResolver() *Resolver {
	return &Resolver{
		fs:    afero.NewOsFs(),
		stdin: os.Stdin,
	}
}

// NewResolverWithFs returns a resolver reading local paths and stdin
// from the given sources. Tests use it with an in-memory filesystem.
func NewResolverWithFs(fs afero.Fs, stdin io.Reader) *Resolver {
	return &Resolver{fs: fs, stdin: stdin}
}

// Open resolves one scenario file argument. The returned name is what
// error locations should display: the argument itself, or "<stdin>"
// for "-".
func (r *Resolver) Open(ctx context.Context, arg string) (io.ReadCloser, string, error) {
	if arg == "-" {
		return io.NopCloser(r.stdin), StdinName, nil
	}

	if !IsRemote(arg) {
		f, err := r.fs.Open(arg)
		if err != nil {
			return nil, "", fmt.Errorf("%w %q: %w", ErrOpen, arg, err)
		}

		return f, arg, nil
	}

	data, err := fetch(ctx, arg)
	if err != nil {
		return nil, "", err
	}

	return io.NopCloser(bytes.NewReader(data)), arg, nil
}

// IsRemote reports whether the argument looks like a go-getter URL
// rather than a local path. Local paths never contain a scheme or a
// forced-getter prefix.
func IsRemote(arg string) bool {
	return strings.Contains(arg, "://") || strings.Contains(arg, "::")
}

// fetch downloads a single remote file. go-getter cannot reliably
// fetch single files from every source, so the enclosing directory is
// fetched and the file read out of the temporary copy.
// https://github.com/hashicorp/go-getter/issues/98
func fetch(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "scenarios-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	dirURL, fileName := splitFileName(url)
	if dirURL == "" || fileName == "" {
		return nil, fmt.Errorf("%w: invalid URL format: %s", ErrFetch, url)
	}

	req.Src = dirURL

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrFetch, err)
	}

	return data, nil
}

// splitFileName separates the file component from a go-getter URL so
// the enclosing directory can be fetched. Query strings (for example
// ?ref=v1.0) survive on the directory URL.
func splitFileName(url string) (string, string) {
	var ref, fileName string

	parts := strings.Split(url, getterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if strings.Contains(last, getterRefSeparator) {
		refSplit := strings.Split(last, getterRefSeparator)
		if len(refSplit) > 1 {
			ref = strings.Join(refSplit[1:], "")
		}

		last = refSplit[0]
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName = filepath.Base(last)
	last = filepath.Dir(last)

	if last == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = last
	}

	dirURL := strings.Join(parts, getterPathSeparator)
	if ref != "" {
		dirURL += getterRefSeparator + ref
	}

	return dirURL, fileName
}
