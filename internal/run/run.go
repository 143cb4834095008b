// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package run executes external commands.
//
// Every stage of the benchmark tools reaches the outside world
// (git, build scripts, installers, the benchmark itself) through an [Executor],
// so that tests can substitute a [Fake] for the real processes.
package run

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// A Mode controls the details of running a command.
type Mode int

const (
	_      Mode = 1 << iota
	Trim        // trim spaces in output
	Stderr      // include stderr in output
)

// A Cmd describes a single command invocation.
type Cmd struct {
	// Args is the command line. Leading NAME=VALUE words are
	// treated as additional environment entries, as in the shell.
	Args []string

	Dir  string    // working directory; empty means the current one
	Env  []string  // extra NAME=VALUE entries layered over os.Environ
	Mode Mode      // output handling
	Out  io.Writer // if non-nil, stdout streams here instead of being returned
}

// Command returns a Cmd for the given command line.
func Command(args ...string) *Cmd {
	return &Cmd{Args: args}
}

// In sets the working directory of c and returns c.
func (c *Cmd) In(dir string) *Cmd {
	c.Dir = dir
	return c
}

// With appends environment entries to c and returns c.
func (c *Cmd) With(env ...string) *Cmd {
	c.Env = append(c.Env, env...)
	return c
}

func (c *Cmd) String() string {
	s := strings.Join(c.Args, " ")
	if c.Dir != "" {
		s = "(cd " + c.Dir + " && " + s + ")"
	}
	return s
}

// An Executor runs commands.
type Executor interface {
	// Run has the same semantics as the package-level Run,
	// except that it need not handle Trim.
	Run(c *Cmd) (out string, err error)
}

// Run runs c using e.
// If the command fails, Run returns an empty output and an error
// marked with [ErrCommand] that contains both stdout and stderr.
// If c.Mode has the Trim bit set, leading and trailing spaces are trimmed from the output.
// If c.Mode has the Stderr bit set, stderr is included in the output on success
// rather than being discarded.
func Run(e Executor, c *Cmd) (out string, err error) {
	out, err = e.Run(c)
	if c.Mode&Trim != 0 {
		out = strings.TrimSpace(out)
	}
	return out, err
}

// Output is shorthand for running args in dir with the Trim mode.
func Output(e Executor, dir string, args ...string) (string, error) {
	return Run(e, &Cmd{Args: args, Dir: dir, Mode: Trim})
}

// isEnvWord reports whether arg is a NAME=VALUE environment setting.
// Paths that happen to contain '=' are not.
func isEnvWord(arg string) bool {
	name, _, ok := strings.Cut(arg, "=")
	if !ok || name == "" || '0' <= name[0] && name[0] <= '9' {
		return false
	}
	for _, r := range name {
		if r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

// A Local is an Executor that runs commands on the local system.
type Local struct{}

func (*Local) Run(c *Cmd) (out string, err error) {
	args := c.Args
	if len(args) == 0 {
		return "", errors.Mark(errors.New("missing command"), ErrCommand)
	}
	env := slices.Clone(c.Env)
	for len(args) > 0 && isEnvWord(args[0]) {
		env = append(env, args[0])
		args = args[1:]
	}
	if len(args) == 0 {
		return "", errors.Mark(errors.Newf("command entirely environment: %s", strings.Join(c.Args, " ")), ErrCommand)
	}

	x := exec.Command(args[0], args[1:]...)
	x.Dir = c.Dir
	if len(env) > 0 {
		// Later entries win, so these override the inherited ones.
		x.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	x.Stdout = &stdout
	if c.Out != nil {
		x.Stdout = c.Out
	}
	x.Stderr = &stderr
	if c.Mode&Stderr != 0 {
		x.Stderr = x.Stdout
	}
	if err := x.Run(); err != nil {
		return "", errors.Mark(errors.Newf("%s: %v\n%s%s", c, err, stdout.Bytes(), stderr.Bytes()), ErrCommand)
	}
	return stdout.String(), nil
}
