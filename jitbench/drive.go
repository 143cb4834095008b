// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Windows drive mapping.

package main

import (
	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/run"
)

// mapDrive sets b.root to the workspace.
// With --subst-drive, the workspace is first mapped to that drive letter
// to keep build paths under the Windows path length limit.
// mapDrive returns a function that undoes the mapping.
func (b *Bench) mapDrive() (release func() error, err error) {
	b.root = b.cfg.Workspace
	drive := b.cfg.SubstDrive
	if drive == "" {
		return func() error { return nil }, nil
	}
	b.log.Info("mapping workspace", "drive", drive, "workspace", b.cfg.Workspace)
	if _, err := run.Run(b.exec, run.Command("subst", drive, b.cfg.Workspace)); err != nil {
		return nil, errors.Wrapf(err, "mapping %s", drive)
	}
	b.root = drive + `\`
	return func() error {
		b.log.Info("releasing drive", "drive", drive)
		_, err := run.Run(b.exec, run.Command("subst", drive, "/D"))
		return err
	}, nil
}
