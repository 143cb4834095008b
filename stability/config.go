// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"rsc.io/perfrun/internal/cliutil"
	"rsc.io/perfrun/internal/loop"
	"rsc.io/perfrun/internal/run"
	"rsc.io/perfrun/internal/stat"
)

// A Config holds the settings for one stability run.
type Config struct {
	Stabilization bool    // --stabilization
	Window        int     // --stabilization-iterations
	StdDev        float64 // --std-dev, percent of median
	Iterations    int     // --iterations: exact count, or the maximum with --stabilization
	TargetDir     string  // --target-dir, default $WORKSPACE or the current directory
	Offline       bool    // --offline
	NoUnpack      bool    // --no-unpack, implies --offline

	Benchmark  string // --benchmark: name of the benchmark to run
	ConfigFile string // --config: YAML benchmark definitions
	CSV        string // --csv: stability results file
	Summary    string // --summary
	LogLevel   string // --log-level

	OS string // host OS, selects the archive
}

// RegisterFlags defines the command-line flags that fill in c.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	*c = Config{
		Window:     5,
		StdDev:     1,
		Iterations: 1,
		Benchmark:  "blackscholes",
		CSV:        "stability.csv",
		OS:         runtime.GOOS,
	}
	flags.BoolVar(&c.Stabilization, "stabilization", false, "run until the last --stabilization-iterations runs are within --std-dev")
	flags.IntVar(&c.Window, "stabilization-iterations", c.Window, "number of trailing runs to measure in stabilization mode (at least 3)")
	flags.Float64Var(&c.StdDev, "std-dev", c.StdDev, "target standard deviation, in percent of the median")
	flags.IntVar(&c.Iterations, "iterations", c.Iterations, "number of runs; with --stabilization, the most to try before giving up")
	flags.StringVar(&c.TargetDir, "target-dir", "", "download benchmarks into `dir` (default $WORKSPACE or the current directory)")
	flags.BoolVar(&c.Offline, "offline", false, "do not download benchmarks")
	flags.BoolVar(&c.NoUnpack, "no-unpack", false, "do not unpack benchmarks; assume they are already unpacked (implies --offline)")
	flags.StringVar(&c.Benchmark, "benchmark", c.Benchmark, "`name` of the benchmark to run")
	flags.StringVar(&c.ConfigFile, "config", "", "read benchmark definitions from YAML `file`")
	flags.StringVar(&c.CSV, "csv", c.CSV, "write results to `file`")
	flags.StringVar(&c.Summary, "summary", "", "write a summary to `file` (.md or .html)")
	flags.StringVar(&c.LogLevel, "log-level", "", "log `level` (default $PERFRUN_LOG_LEVEL or info)")
}

// Finish applies environment defaults and validates c.
func (c *Config) Finish(env cliutil.Env) error {
	if c.TargetDir == "" {
		c.TargetDir = env.Workspace
	}
	if c.TargetDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return errors.Mark(err, run.ErrConfig)
		}
		c.TargetDir = dir
	}
	if c.LogLevel == "" {
		c.LogLevel = env.LogLevel
	}
	if c.NoUnpack {
		c.Offline = true
	}
	if err := stat.CheckWindow(c.Window); err != nil {
		return errors.Wrap(err, "--stabilization-iterations")
	}
	if err := c.Controller().Check(); err != nil {
		return errors.Wrap(err, "--iterations")
	}
	if c.StdDev < 0 {
		return errors.Mark(errors.Newf("--std-dev must not be negative, have %g", c.StdDev), run.ErrConfig)
	}
	return nil
}

// Controller returns the iteration loop described by c.
func (c *Config) Controller() *loop.Controller {
	ctl := &loop.Controller{
		Mode:         loop.Fixed,
		Iterations:   c.Iterations,
		Window:       c.Window,
		TargetStdDev: c.StdDev,
	}
	if c.Stabilization {
		ctl.Mode = loop.Stabilize
	}
	return ctl
}
