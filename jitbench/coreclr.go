// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Building coreclr.

package main

import (
	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/gitsrc"
	"rsc.io/perfrun/internal/run"
)

// prepareCoreCLR fetches and builds coreclr when --clrsetup is set.
// Either way, it checks that the product directory to patch from exists.
func (b *Bench) prepareCoreCLR() error {
	bin := b.coreclrBinPath()
	if !b.cfg.CLRSetup {
		if !fsutil.IsDir(b.fs, bin) {
			return errors.Mark(errors.Newf("coreclr binaries %s do not exist; build them or pass --clrsetup=true", bin), run.ErrConfig)
		}
		b.log.Info("using prebuilt coreclr", "dir", bin)
		return nil
	}

	repo := gitsrc.Repo{URL: b.cfg.CoreCLRRepo, Branch: b.cfg.Branch, Dir: b.coreclrDir()}
	head, err := b.git.Sync(repo)
	if err != nil {
		return err
	}
	b.heads["coreclr"] = head

	var build []string
	if b.cfg.OS == "windows" {
		build = []string{"cmd.exe", "/c", "build.cmd", "release", b.cfg.Arch, "skiptests"}
	} else {
		build = []string{"./build.sh", "release", b.cfg.Arch, "skiptests"}
	}
	b.log.Info("building coreclr", "arch", b.cfg.Arch)
	out, err := run.Run(b.exec, &run.Cmd{Args: build, Dir: repo.Dir, Mode: run.Stderr})
	if err != nil {
		return errors.Wrap(err, "building coreclr")
	}
	b.log.Trace("build output", "output", out)

	if !fsutil.IsDir(b.fs, bin) {
		return errors.Mark(errors.Newf("coreclr build output %s does not exist", bin), run.ErrCommand)
	}
	return nil
}
