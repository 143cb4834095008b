// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"rsc.io/perfrun/internal/csvout"
	"rsc.io/perfrun/internal/fetch"
	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/loop"
	"rsc.io/perfrun/internal/progress"
	"rsc.io/perfrun/internal/report"
	"rsc.io/perfrun/internal/run"
)

// A Tester runs one benchmark until its timings are stable.
type Tester struct {
	cfg *Config

	exec  run.Executor      // replaced for testing
	fs    fsutil.FileSystem // replaced for testing
	log   hclog.Logger      // replaced for testing
	out   io.Writer         // iteration progress
	disp  *progress.Display
	fetch *fetch.Fetcher
}

func newTester(cfg *Config, log hclog.Logger) *Tester {
	t := &Tester{
		cfg:  cfg,
		exec: new(run.Local),
		fs:   new(fsutil.Local),
		log:  log,
		out:  os.Stdout,
		disp: progress.New(os.Stdout),
	}
	t.init()
	return t
}

func (t *Tester) init() {
	t.fetch = &fetch.Fetcher{
		Offline:  t.cfg.Offline,
		NoUnpack: t.cfg.NoUnpack,
		FS:       t.fs,
		Log:      t.log,
	}
}

// Run fetches the benchmark, runs it, and writes the results.
// The results file is written whenever at least one run completed,
// even if the timings never became stable.
func (t *Tester) Run() error {
	list, err := loadBenchmarks(t.fs, t.cfg.ConfigFile)
	if err != nil {
		return err
	}
	b, err := findBenchmark(list, t.cfg.Benchmark)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Running native stability tests on %s. Aiming for standard deviation of %.2f%% from median\n", t.cfg.OS, t.cfg.StdDev)
	fmt.Fprintf(t.out, "Running %s\n", b.Name)

	dir, err := t.prepare(b)
	if err != nil {
		return errors.Wrap(err, "preparing benchmark")
	}

	ctl := t.cfg.Controller()
	ctl.Out = t.out
	ctl.Display = t.disp
	res, runErr := ctl.Run(func(int) (float64, error) { return t.sample(b, dir) })

	if len(res.Samples) > 0 {
		t.log.Info("writing results", "file", t.cfg.CSV, "values", len(res.Samples))
		if err := csvout.WriteStability(t.fs, t.cfg.CSV, b.Name, res.Samples); err != nil {
			return errors.CombineErrors(runErr, err)
		}
		if err := t.writeSummary(b, res); err != nil {
			return errors.CombineErrors(runErr, err)
		}
	}
	if runErr != nil {
		if errors.Is(runErr, run.ErrNotConverged) {
			fmt.Fprintf(t.out, "Benchmark failed to reach desired standard deviation, exiting\n")
		}
		return errors.Wrapf(runErr, "%s", b.Name)
	}
	return nil
}

// prepare places the benchmark's archive under the target directory,
// unpacks it, and returns the directory to run it in.
func (t *Tester) prepare(b *Benchmark) (string, error) {
	src, ok := b.Archive[t.cfg.OS]
	if !ok {
		return "", errors.Mark(errors.Newf("benchmark %s has no archive for %s", b.Name, t.cfg.OS), run.ErrConfig)
	}
	dir := filepath.Join(t.cfg.TargetDir, b.Name)
	if err := t.fs.MkdirAll(dir, 0777); err != nil {
		return "", err
	}
	file := filepath.Join(dir, b.Name+".tar.gz")
	if err := t.fetch.Fetch(src, file, dir); err != nil {
		return "", err
	}
	return dir, nil
}

// sample runs the benchmark once in dir and returns its timing.
func (t *Tester) sample(b *Benchmark, dir string) (float64, error) {
	args := slices.Clone(b.Command)
	if !filepath.IsAbs(args[0]) {
		args[0] = filepath.Join(dir, args[0])
	}
	out, err := run.Run(t.exec, run.Command(args...).In(dir))
	if err != nil {
		return 0, err
	}
	return b.ParseTiming(out)
}

func (t *Tester) writeSummary(b *Benchmark, res *loop.Result) error {
	if t.cfg.Summary == "" {
		return nil
	}
	s := &report.Summary{Title: "Stability of " + b.Name}
	mode := "fixed"
	if t.cfg.Stabilization {
		mode = fmt.Sprintf("stabilization over %d runs", t.cfg.Window)
	}
	s.Notes = append(s.Notes,
		fmt.Sprintf("%s, target %.2f%% of median", mode, t.cfg.StdDev),
		fmt.Sprintf("converged: %v", res.Converged))
	if res.Convergence != nil {
		s.Notes = append(s.Notes, "last window: "+res.Convergence.String())
	}
	if err := s.Add(b.Name+" (s)", res.Samples); err != nil {
		return err
	}
	return s.Write(t.fs, t.cfg.Summary)
}
