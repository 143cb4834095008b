// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package run

import "github.com/cockroachdb/errors"

// Failure classes. Every error that stops a run is marked with one of these.
var (
	ErrConfig       = errors.New("configuration error")
	ErrCommand      = errors.New("external command failed")
	ErrParse        = errors.New("parse error")
	ErrNotConverged = errors.New("measurements did not stabilize")
)

// Class returns the failure class of err, or nil if err is unclassified.
func Class(err error) error {
	for _, c := range []error{ErrConfig, ErrCommand, ErrParse, ErrNotConverged} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}

// Mark marks err with class unless it already carries a class.
func Mark(err, class error) error {
	if err == nil || Class(err) != nil {
		return err
	}
	return errors.Mark(err, class)
}
