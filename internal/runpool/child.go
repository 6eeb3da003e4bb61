// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runpool

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/troiganto/scenarios-sub000/internal/progress"
	"github.com/troiganto/scenarios-sub000/internal/teereader"
)

// maxCaptureSize bounds how much of each captured stream is kept.
const maxCaptureSize = 8 * 1024 * 1024

// outputLineInterval is how often a running child's latest output line
// is reported in capture mode.
const outputLineInterval = 500 * time.Millisecond

// lastLineDisplayLength truncates reported output lines for display.
const lastLineDisplayLength = 120

var (
	// ErrSpawn is wrapped into every failure to start a child process.
	ErrSpawn = errors.New("could not execute command")
	// ErrWait is wrapped into every failure to collect a child's exit
	// status.
	ErrWait = errors.New("could not check child process's status")
)

// ChildError tags a child process error with the scenario it ran for.
type ChildError struct {
	Scenario string
	Err      error
}

// Error implements error.
func (e *ChildError) Error() string {
	return fmt.Sprintf("%s\n\tin scenario %q", e.Err, e.Scenario)
}

// Unwrap returns the undecorated error.
func (e *ChildError) Unwrap() error {
	return e.Err
}

// ExitError reports a child that ran to completion without success.
type ExitError struct {
	State *os.ProcessState
}

// Error implements error.
func (e *ExitError) Error() string {
	if code := e.State.ExitCode(); code >= 0 {
		return fmt.Sprintf("command returned non-zero exit code: %d", code)
	}

	return fmt.Sprintf("command terminated by %s", e.State.String())
}

// PreparedChild is a fully resolved command invocation for one
// scenario, ready to spawn.
type PreparedChild struct {
	// Scenario is the combined scenario name, used in error messages
	// and progress events.
	Scenario string
	// Args is the argument vector. Args[0] is the program to run; it
	// is resolved against PATH at spawn time.
	Args []string
	// Env is the complete child environment as "KEY=value" entries.
	Env []string
	// Dir is the working directory. Empty means inherit.
	Dir string
	// Capture redirects the child's stdout and stderr into bounded
	// buffers instead of the parent's stdio.
	Capture bool
	// Reporter receives the child's latest output line while it runs.
	// Only used in capture mode. Nil disables reporting.
	Reporter progress.Reporter
}

// Start spawns the child process. The token must have been acquired by
// the caller and is carried through to the reaped outcome. Spawn
// failures are returned as ChildError and the caller keeps the token.
func (pc *PreparedChild) Start(token Token) (*RunningChild, error) {
	path, err := exec.LookPath(pc.Args[0])
	if err != nil {
		return nil, pc.spawnError(err)
	}

	rc := &RunningChild{
		scenario: pc.Scenario,
		token:    token,
		started:  time.Now(),
	}

	files := []*os.File{os.Stdin, os.Stdout, os.Stderr}

	var parentEnds []*os.File

	if pc.Capture {
		rOut, wOut, err := os.Pipe()
		if err != nil {
			return nil, pc.spawnError(err)
		}

		rErr, wErr, err := os.Pipe()
		if err != nil {
			rOut.Close() //nolint:errcheck
			wOut.Close() //nolint:errcheck

			return nil, pc.spawnError(err)
		}

		rc.stdout = teereader.New(rOut, maxCaptureSize)
		rc.stderr = teereader.New(rErr, maxCaptureSize)
		files = []*os.File{os.Stdin, wOut, wErr}
		parentEnds = []*os.File{rOut, rErr}
		rc.pipeEnds = parentEnds

		defer wOut.Close() //nolint:errcheck
		defer wErr.Close() //nolint:errcheck
	}

	proc, err := os.StartProcess(path, pc.Args, &os.ProcAttr{
		Dir:   pc.Dir,
		Env:   pc.Env,
		Files: files,
	})
	if err != nil {
		for _, f := range parentEnds {
			f.Close() //nolint:errcheck
		}

		return nil, pc.spawnError(err)
	}

	rc.proc = proc

	if pc.Capture {
		rc.drainers.Add(2)
		go rc.drainStream(rc.stdout)
		go rc.drainStream(rc.stderr)

		if pc.Reporter != nil {
			rc.watchDone = make(chan struct{})
			rc.watchers.Add(1)

			go rc.watchOutput(pc.Reporter)
		}
	}

	return rc, nil
}

func (pc *PreparedChild) spawnError(err error) error {
	return &ChildError{
		Scenario: pc.Scenario,
		Err:      fmt.Errorf("%w %q: %w", ErrSpawn, pc.Args[0], err),
	}
}

// RunningChild is a spawned process that has not been reaped yet.
type RunningChild struct {
	scenario  string
	proc      *os.Process
	token     Token
	started   time.Time
	stdout    *teereader.LastLineTee
	stderr    *teereader.LastLineTee
	pipeEnds  []*os.File
	drainers  sync.WaitGroup
	watchers  sync.WaitGroup
	watchDone chan struct{}
}

// Scenario returns the combined scenario name the child runs for.
func (rc *RunningChild) Scenario() string {
	return rc.scenario
}

// drainStream consumes a captured stream until the child closes it.
func (rc *RunningChild) drainStream(tee *teereader.LastLineTee) {
	defer rc.drainers.Done()

	io.Copy(io.Discard, tee) //nolint:errcheck
}

// watchOutput reports the latest output line at a fixed interval until
// the child is reaped. Stderr wins over stdout when both have output,
// it is usually the more interesting stream.
func (rc *RunningChild) watchOutput(reporter progress.Reporter) {
	defer rc.watchers.Done()

	ticker := time.NewTicker(outputLineInterval)
	defer ticker.Stop()

	var lastSent string

	for {
		select {
		case <-rc.watchDone:
			return
		case <-ticker.C:
			line := rc.stderr.LastLine(lastLineDisplayLength)
			if line == "" {
				line = rc.stdout.LastLine(lastLineDisplayLength)
			}

			if line == "" || line == lastSent {
				continue
			}

			lastSent = line
			reporter.Report(progress.Event{
				Scenario:  rc.scenario,
				Type:      progress.EventOutput,
				Timestamp: time.Now(),
				Line:      line,
			})
		}
	}
}

// wait blocks until the child exits and returns the reaped outcome.
// It is called from the pool's reaper goroutine, exactly once.
func (rc *RunningChild) wait() *FinishedChild {
	state, err := rc.proc.Wait()

	// The pipes deliver EOF once the child (and anything inheriting
	// its descriptors) is gone; collect the stragglers before reading
	// the buffers.
	rc.drainers.Wait()

	for _, f := range rc.pipeEnds {
		f.Close() //nolint:errcheck
	}

	// Join the watcher so that no Report call is in flight once the
	// child counts as reaped.
	if rc.watchDone != nil {
		close(rc.watchDone)
		rc.watchers.Wait()
	}

	fc := &FinishedChild{
		Scenario: rc.scenario,
		State:    state,
		WaitErr:  err,
		Started:  rc.started,
		Ended:    time.Now(),
		token:    rc.token,
	}

	if rc.stdout != nil {
		fc.Stdout = rc.stdout.Bytes()
		fc.Stderr = rc.stderr.Bytes()
	}

	return fc
}

// FinishedChild is a reaped child outcome together with the token the
// child held.
type FinishedChild struct {
	// Scenario is the combined scenario name.
	Scenario string
	// State is the process state from Wait. Nil when WaitErr is set.
	State *os.ProcessState
	// WaitErr is set when collecting the exit status itself failed.
	WaitErr error
	// Stdout and Stderr hold the captured streams in capture mode.
	Stdout []byte
	Stderr []byte
	// Started and Ended bracket the child's lifetime.
	Started time.Time
	Ended   time.Time

	token Token
}

// Token returns the concurrency token the child held. The execution
// loop releases it back to the stock.
func (fc *FinishedChild) Token() Token {
	return fc.token
}

// Err returns the terminal error of the child, or nil if it succeeded.
func (fc *FinishedChild) Err() error {
	switch {
	case fc.WaitErr != nil:
		return &ChildError{
			Scenario: fc.Scenario,
			Err:      fmt.Errorf("%w: %w", ErrWait, fc.WaitErr),
		}
	case !fc.State.Success():
		return &ChildError{
			Scenario: fc.Scenario,
			Err:      &ExitError{State: fc.State},
		}
	default:
		return nil
	}
}

// ExitCode returns the child's exit code, or -1 when it was signalled
// or its status could not be collected.
func (fc *FinishedChild) ExitCode() int {
	if fc.State == nil {
		return -1
	}

	return fc.State.ExitCode()
}

// Duration returns how long the child ran.
func (fc *FinishedChild) Duration() time.Duration {
	return fc.Ended.Sub(fc.Started)
}
