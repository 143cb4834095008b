// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Running the application and collecting results.

package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/csvout"
	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/logparse"
	"rsc.io/perfrun/internal/progress"
	"rsc.io/perfrun/internal/report"
	"rsc.io/perfrun/internal/run"
)

// markers are the log lines MusicStore prints for each measurement.
var markers = []logparse.Marker{
	{Prefix: "Server started in", Key: "startup", Label: "JitBenchStartupTime"},
	{Prefix: "Request took", Key: "request", Label: "JitBenchRequestTime"},
}

var steadyStateMarkers = []logparse.Marker{
	{Prefix: "Steadystate min response time", Key: "steadymin", Label: "JitBenchSteadyStateMin"},
	{Prefix: "Steadystate max response time", Key: "steadymax", Label: "JitBenchSteadyStateMax"},
	{Prefix: "Steadystate average response time", Key: "steadyavg", Label: "JitBenchSteadyStateAverage"},
}

// failureMarkers are line prefixes that mean the application crashed.
var failureMarkers = []string{
	"Unhandled Exception",
	"Unhandled exception",
}

func (b *Bench) table() *logparse.Table {
	t := &logparse.Table{Failures: failureMarkers}
	t.Markers = append(t.Markers, markers...)
	if b.cfg.SteadyState {
		t.Markers = append(t.Markers, steadyStateMarkers...)
	}
	return t
}

// runJitBench runs the published application once to warm up,
// then --iterations times with output appended to a log,
// and leaves the log at the workspace root.
func (b *Bench) runJitBench() error {
	dir := b.publishDir()
	app := func() *run.Cmd { return b.dotnetCmd(dir, b.dotnet(), "MusicStore.dll") }

	b.log.Info("warming up", "dir", dir)
	if _, err := run.Run(b.exec, app()); err != nil {
		return errors.Wrap(err, "running MusicStore")
	}

	log := filepath.Join(dir, "output.txt")
	w, err := b.fs.Create(log)
	if err != nil {
		return err
	}
	defer w.Close()
	n := b.cfg.Iterations
	for i := 1; i <= n; i++ {
		fmt.Fprintf(b.out, "Running iteration %d of %d - ", i, n)
		stop := b.disp.Start()
		c := app()
		c.Out = w
		_, err := run.Run(b.exec, c)
		elapsed := stop()
		if err != nil {
			b.disp.Fail()
			fmt.Fprintln(b.out)
			return errors.Wrapf(err, "running MusicStore, iteration %d", i)
		}
		b.disp.Pass()
		fmt.Fprintln(b.out, progress.Elapsed(elapsed))
	}
	if err := w.Close(); err != nil {
		return err
	}

	b.output = filepath.Join(b.root, "output.txt")
	b.log.Info("moving output", "from", log, "to", b.output)
	return fsutil.MoveFile(b.fs, log, b.output)
}

// parseOutput reads the collected log and writes one result file per metric.
func (b *Bench) parseOutput() error {
	t := b.table()
	series, err := t.ParseFile(b.output, b.cfg.Iterations)
	if err != nil {
		return err
	}
	b.results = series
	for _, m := range t.Markers {
		file := filepath.Join(b.root, m.Key+b.cfg.Suffix+".txt")
		b.log.Info("writing results", "file", file, "values", len(series[m.Key]))
		if err := csvout.WriteSeries(b.fs, file, m.Label+b.cfg.Suffix, series[m.Key]); err != nil {
			return err
		}
	}
	return nil
}

// writeSummary writes the --summary file, if requested.
func (b *Bench) writeSummary() error {
	if b.cfg.Summary == "" {
		return nil
	}
	s := &report.Summary{Title: "JitBench " + b.cfg.OS + "/" + b.cfg.Arch}
	for _, name := range []string{"coreclr", "JitBench"} {
		if h, ok := b.heads[name]; ok {
			s.Notes = append(s.Notes, fmt.Sprintf("%s at %s", name, h))
		}
	}
	s.Notes = append(s.Notes, fmt.Sprintf("%d iterations, crossgen %v", b.cfg.Iterations, b.cfg.RunCrossgen))
	for _, m := range b.table().Markers {
		values := make([]float64, 0, len(b.results[m.Key]))
		for _, v := range b.results[m.Key] {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.Mark(errors.Wrapf(err, "%s", m.Key), run.ErrParse)
			}
			values = append(values, f)
		}
		if err := s.Add(m.Label+b.cfg.Suffix+" (ms)", values); err != nil {
			return err
		}
	}
	return s.Write(b.fs, b.cfg.Summary)
}
