// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package usearch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"v.io/x/lib/envvar"
	"v.io/x/lib/lookpath"
)

// Runner runs one external program to completion. Run must block until the
// program exits, and return a non-nil error unless it exited with status 0.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}

// ExecRunner runs programs as child processes.
type ExecRunner struct {
	// Stdout and Stderr receive the child's output. Nil means the current
	// process's stdout and stderr.
	Stdout, Stderr io.Writer
}

// ExitError is returned by ExecRunner when a program exits with a non-zero
// status.
type ExitError struct {
	// Cmdline is the program and its arguments, space separated.
	Cmdline string
	// Status is the exit status. A program killed by a signal has status 128
	// plus the signal number, as reported by sh.
	Status int
	Err    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d: %v", e.Cmdline, e.Status, e.Err)
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = r.Stdout, r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmdline := Cmdline(name, args...)
	log.Debug.Printf("exec: %s", cmdline)
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		status := ee.ExitCode()
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			status = 128 + int(ws.Signal())
		}
		return &ExitError{Cmdline: cmdline, Status: status, Err: err}
	}
	return errors.E(err, "exec", cmdline)
}

// ExitStatus returns the exit status carried by err, if err (or an error it
// wraps) is an *ExitError.
func ExitStatus(err error) (int, bool) {
	for err != nil {
		switch e := err.(type) {
		case *ExitError:
			return e.Status, true
		case *errors.Error:
			err = e.Err
		default:
			return 0, false
		}
	}
	return 0, false
}

// Cmdline formats a program invocation for logging.
func Cmdline(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// LookPath returns the absolute path of the executable name, searching $PATH
// if name is not already a path.
func LookPath(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		info, err := os.Stat(name)
		if err != nil {
			return "", errors.E(errors.NotExist, err, "usearch executable", name)
		}
		if info.IsDir() || info.Mode()&0111 == 0 {
			return "", errors.E(errors.NotAllowed, "usearch executable", name, "is not executable")
		}
		return filepath.Abs(name)
	}
	env := envvar.SliceToMap(os.Environ())
	path, err := lookpath.Look(env, name)
	if err != nil {
		return "", errors.E(errors.NotExist, err, "usearch executable", name)
	}
	return path, nil
}
