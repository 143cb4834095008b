// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/gitsrc"
	"rsc.io/perfrun/internal/progress"
	"rsc.io/perfrun/internal/run"
)

// A Bench holds all the state for one benchmark run.
type Bench struct {
	cfg *Config

	exec   run.Executor      // replaced for testing
	fs     fsutil.FileSystem // replaced for testing
	log    hclog.Logger      // replaced for testing
	out    io.Writer         // iteration progress
	getenv func(string) string
	disp   *progress.Display
	git    *gitsrc.Client

	root    string            // workspace, possibly through a mapped drive
	heads   map[string]string // checkout name -> commit, for the summary
	output  string            // collected application output
	results map[string][]string
}

func newBench(cfg *Config, log hclog.Logger) *Bench {
	b := &Bench{
		cfg:    cfg,
		exec:   new(run.Local),
		fs:     new(fsutil.Local),
		log:    log,
		out:    os.Stdout,
		getenv: os.Getenv,
		disp:   progress.New(os.Stdout),
	}
	b.init()
	return b
}

// init wires the helpers that depend on the replaceable fields.
func (b *Bench) init() {
	b.git = &gitsrc.Client{Exec: b.exec, FS: b.fs, Log: b.log}
	b.heads = make(map[string]string)
}

// Run runs every stage in order, stopping at the first failure.
// A drive mapped for the run is released before Run returns, even on failure.
func (b *Bench) Run() (err error) {
	release, err := b.mapDrive()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); rerr != nil {
			b.log.Error("releasing drive mapping", "error", rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"prepare coreclr", b.prepareCoreCLR},
		{"prepare jitbench", b.prepareJitBench},
		{"run jitbench", b.runJitBench},
		{"parse output", b.parseOutput},
		{"write summary", b.writeSummary},
	}
	for _, step := range steps {
		b.log.Debug("starting stage", "stage", step.name)
		if err := step.fn(); err != nil {
			return errors.Wrapf(err, "%s", step.name)
		}
	}
	return nil
}

// Paths inside the workspace.

func (b *Bench) coreclrDir() string  { return filepath.Join(b.root, "coreclr") }
func (b *Bench) jitbenchDir() string { return filepath.Join(b.root, "JitBench") }
func (b *Bench) dotnetDir() string   { return filepath.Join(b.jitbenchDir(), ".dotnet") }
func (b *Bench) appDir() string      { return filepath.Join(b.jitbenchDir(), "src", "MusicStore") }

func (b *Bench) publishDir() string {
	return filepath.Join(b.appDir(), "bin", "Release", "netcoreapp20", "publish")
}

func (b *Bench) sharedRuntimeDir() string {
	return filepath.Join(b.dotnetDir(), "shared", "Microsoft.NETCore.App")
}

func (b *Bench) coreclrBinPath() string {
	if b.cfg.CoreCLRBinPath != "" {
		return b.cfg.CoreCLRBinPath
	}
	return filepath.Join(b.coreclrDir(), "bin", "Product", b.cfg.productOS()+"."+b.cfg.Arch+".Release")
}

func (b *Bench) dotnet() string {
	if b.cfg.OS == "windows" {
		return filepath.Join(b.dotnetDir(), "dotnet.exe")
	}
	return filepath.Join(b.dotnetDir(), "dotnet")
}
