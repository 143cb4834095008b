// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchmark definitions.

package main

import (
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/run"
)

// A Benchmark describes a native benchmark distributed as an archive.
type Benchmark struct {
	Name string `yaml:"name"`

	// Archive maps a GOOS value to the archive URL or local path for that OS.
	Archive map[string]string `yaml:"archive"`

	// Command is the command line to run, relative to the unpacked archive.
	// Command[0] is resolved against that directory.
	Command []string `yaml:"command"`

	// Timing is a regular expression whose first group
	// matches the run's timing in seconds.
	Timing string `yaml:"timing"`

	timing *regexp.Regexp
}

type benchmarkFile struct {
	Benchmarks []*Benchmark `yaml:"benchmarks"`
}

// builtinBenchmarks is used when no --config file is given.
var builtinBenchmarks = []*Benchmark{
	{
		Name: "blackscholes",
		Archive: map[string]string{
			"windows": "https://dciperfdata.blob.core.windows.net/stability/Windows-blackscholes.tar.gz",
			"linux":   "https://dciperfdata.blob.core.windows.net/stability/Linux-blackscholes.tar.gz",
		},
		Command: []string{"blackscholes_cpp_serial", "1", "in_10M.txt", "prices.txt"},
		Timing:  `\[HOOKS\] Total time spent in ROI: (\d+\.?\d*)s`,
	},
}

// loadBenchmarks reads benchmark definitions from file,
// or returns the built-in ones if file is empty.
func loadBenchmarks(fsys fsutil.FileSystem, file string) ([]*Benchmark, error) {
	list := builtinBenchmarks
	if file != "" {
		data, err := fsys.ReadFile(file)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "reading benchmark definitions"), run.ErrConfig)
		}
		var f benchmarkFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%s", file), run.ErrConfig)
		}
		list = f.Benchmarks
	}
	for _, b := range list {
		if err := b.compile(); err != nil {
			return nil, errors.Mark(err, run.ErrConfig)
		}
	}
	return list, nil
}

func (b *Benchmark) compile() error {
	if b.Name == "" {
		return errors.New("benchmark with no name")
	}
	if len(b.Command) == 0 {
		return errors.Newf("benchmark %s: no command", b.Name)
	}
	re, err := regexp.Compile(b.Timing)
	if err != nil {
		return errors.Wrapf(err, "benchmark %s: timing", b.Name)
	}
	if re.NumSubexp() < 1 {
		return errors.Newf("benchmark %s: timing pattern %q has no group", b.Name, b.Timing)
	}
	b.timing = re
	return nil
}

// findBenchmark returns the benchmark with the given name.
func findBenchmark(list []*Benchmark, name string) (*Benchmark, error) {
	for _, b := range list {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, errors.Mark(errors.Newf("unknown benchmark %q", name), run.ErrConfig)
}

// ParseTiming returns the timing reported in the benchmark's output.
// The first matching line wins.
func (b *Benchmark) ParseTiming(out string) (float64, error) {
	m := b.timing.FindStringSubmatch(out)
	if m == nil || m[1] == "" {
		return 0, errors.Mark(errors.Newf("%s: no timing in output", b.Name), run.ErrParse)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "%s: timing", b.Name), run.ErrParse)
	}
	return v, nil
}
