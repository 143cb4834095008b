// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package run

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// A Fake is an Executor that runs no processes.
// It records every command and answers from a script of responses.
// Commands with no scripted response succeed with empty output.
type Fake struct {
	Cmds []*Cmd // commands run so far, in order

	script []fakeResponse
}

type fakeResponse struct {
	prefix string
	fn     func(c *Cmd) (string, error)
}

// On scripts the response for commands whose command line starts with prefix.
// A non-nil err makes the command fail.
func (f *Fake) On(prefix, out string, err error) {
	f.OnFunc(prefix, func(*Cmd) (string, error) { return out, err })
}

// OnFunc scripts a computed response for commands starting with prefix.
// Later scripts take precedence over earlier ones.
func (f *Fake) OnFunc(prefix string, fn func(c *Cmd) (string, error)) {
	f.script = append(f.script, fakeResponse{prefix, fn})
}

func (f *Fake) Run(c *Cmd) (string, error) {
	f.Cmds = append(f.Cmds, c)
	line := strings.Join(c.Args, " ")
	for i := len(f.script) - 1; i >= 0; i-- {
		r := f.script[i]
		if !strings.HasPrefix(line, r.prefix) {
			continue
		}
		out, err := r.fn(c)
		if err != nil {
			return "", errors.Mark(errors.Wrapf(err, "%s", c), ErrCommand)
		}
		if c.Out != nil {
			_, err := io.WriteString(c.Out, out)
			return "", err
		}
		return out, nil
	}
	return "", nil
}

// Lines returns the command lines run so far, one string per command.
func (f *Fake) Lines() []string {
	var lines []string
	for _, c := range f.Cmds {
		lines = append(lines, c.String())
	}
	return lines
}
