// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gitsrc keeps source checkouts up to date.
package gitsrc

import (
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/run"
)

// A Repo is a git repository checked out in a local directory.
type Repo struct {
	URL    string // clone URL
	Branch string // branch to clone; empty means the remote default
	Dir    string // local checkout
}

// A Client runs git commands.
type Client struct {
	Exec run.Executor
	FS   fsutil.FileSystem
	Log  hclog.Logger
}

// Sync brings r.Dir up to date: it pulls if the checkout exists
// and clones it otherwise. It returns the commit now checked out.
func (c *Client) Sync(r Repo) (head string, err error) {
	if fsutil.IsDir(c.FS, r.Dir) {
		c.Log.Info("updating checkout", "dir", r.Dir)
		if _, err := run.Run(c.Exec, run.Command("git", "pull").In(r.Dir)); err != nil {
			return "", errors.Wrapf(err, "updating %s", r.Dir)
		}
	} else {
		c.Log.Info("cloning", "repo", r.URL, "branch", r.Branch, "dir", r.Dir)
		args := []string{"git", "clone"}
		if r.Branch != "" {
			args = append(args, "-b", r.Branch)
		}
		args = append(args, r.URL, r.Dir)
		if _, err := run.Run(c.Exec, run.Command(args...)); err != nil {
			return "", errors.Wrapf(err, "cloning %s", r.URL)
		}
	}
	if !fsutil.IsDir(c.FS, r.Dir) {
		return "", errors.Mark(errors.Newf("%s does not exist after sync", r.Dir), run.ErrCommand)
	}
	head, err = c.Head(r.Dir)
	if err != nil {
		return "", err
	}
	c.Log.Info("checkout ready", "dir", r.Dir, "head", head)
	return head, nil
}

// Head returns the abbreviated commit hash checked out in dir.
func (c *Client) Head(dir string) (string, error) {
	hash, err := run.Output(c.Exec, dir, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	if len(hash) > 11 {
		hash = hash[:11]
	}
	return hash, nil
}
