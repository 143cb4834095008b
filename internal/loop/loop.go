// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loop drives repeated runs of a benchmark.
package loop

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/progress"
	"rsc.io/perfrun/internal/run"
	"rsc.io/perfrun/internal/stat"
)

// A Mode selects when the loop stops.
type Mode int

const (
	// Fixed runs exactly Iterations times and evaluates the result once.
	Fixed Mode = iota
	// Stabilize runs until the last Window samples are within TargetStdDev,
	// giving up after Iterations runs.
	Stabilize
)

// A Sampler runs iteration i (counting from 1) and returns its timing.
type Sampler func(i int) (float64, error)

// A Controller runs a Sampler repeatedly.
type Controller struct {
	Mode         Mode
	Iterations   int     // exact count (Fixed) or maximum (Stabilize)
	Window       int     // samples considered in Stabilize mode
	TargetStdDev float64 // percent of median

	Out     io.Writer         // iteration log
	Display *progress.Display // nil means no live timer
}

// A Result is what a run of the loop produced.
type Result struct {
	Samples     []float64
	Convergence *stat.Convergence // last evaluation, nil if none happened
	Converged   bool
}

// Check validates the controller's settings.
func (c *Controller) Check() error {
	if c.Iterations < 1 {
		return errors.Mark(errors.Newf("iterations must be at least 1, have %d", c.Iterations), run.ErrConfig)
	}
	if c.Mode == Stabilize {
		return stat.CheckWindow(c.Window)
	}
	return nil
}

// Run runs sample until the controller's stop condition holds.
//
// The returned Result is non-nil even when Run fails, so that callers can
// persist the samples collected so far. A sampler failure ends the loop
// immediately. Exhausting the iteration budget without reaching the target
// deviation returns an error marked with run.ErrNotConverged.
func (c *Controller) Run(sample Sampler) (*Result, error) {
	r := new(Result)
	if err := c.Check(); err != nil {
		return r, err
	}
	for i := 1; i <= c.Iterations; i++ {
		fmt.Fprintf(c.w(), "Running iteration %d of %d - ", i, c.Iterations)
		start := time.Now()
		var stopTimer func() time.Duration
		if c.Display != nil {
			stopTimer = c.Display.Start()
		}
		v, err := sample(i)
		elapsed := time.Since(start)
		if stopTimer != nil {
			elapsed = stopTimer()
		}
		if err != nil {
			fmt.Fprintf(c.w(), "failed\n")
			return r, run.Mark(errors.Wrapf(err, "iteration %d", i), run.ErrCommand)
		}
		r.Samples = append(r.Samples, v)
		fmt.Fprintf(c.w(), "%fs (took %s)\n", v, progress.Elapsed(elapsed))

		if c.Mode != Stabilize || len(r.Samples) < c.Window {
			continue
		}
		conv, err := stat.Evaluate(r.Samples, c.Window)
		if err != nil {
			return r, err
		}
		r.Convergence = &conv
		fmt.Fprintf(c.w(), "Standard deviation was %.2f%% of median %.3f over the last %d iterations\n", conv.PercentOfMedian, conv.Median, conv.Window)
		if conv.Within(c.TargetStdDev) {
			fmt.Fprintf(c.w(), "Hit target of < %.2f%%, stopping\n", c.TargetStdDev)
			r.Converged = true
			return r, nil
		}
		fmt.Fprintf(c.w(), "Haven't hit target of < %.2f%%, continuing\n", c.TargetStdDev)
	}

	if c.Mode == Stabilize {
		fmt.Fprintf(c.w(), "Failed to hit standard deviation target of %.2f%%\n", c.TargetStdDev)
		return r, c.notConverged(r)
	}
	return r, c.evaluateOnce(r)
}

// evaluateOnce evaluates a fixed-count run over all of its samples.
// Runs too short to trim are accepted without evaluation.
func (c *Controller) evaluateOnce(r *Result) error {
	if len(r.Samples) < stat.MinWindow {
		fmt.Fprintf(c.w(), "Only %d samples; skipping standard deviation check\n", len(r.Samples))
		r.Converged = true
		return nil
	}
	conv, err := stat.Evaluate(r.Samples, len(r.Samples))
	if err != nil {
		return err
	}
	r.Convergence = &conv
	fmt.Fprintf(c.w(), "Standard deviation was %.2f%% of median %.3f.\n", conv.PercentOfMedian, conv.Median)
	if conv.Within(c.TargetStdDev) {
		fmt.Fprintf(c.w(), "Hit target of < %.2f%%\n", c.TargetStdDev)
		r.Converged = true
		return nil
	}
	fmt.Fprintf(c.w(), "Did not hit target of < %.2f%%, failing\n", c.TargetStdDev)
	return c.notConverged(r)
}

func (c *Controller) notConverged(r *Result) error {
	last := "never evaluated"
	if r.Convergence != nil {
		last = r.Convergence.String()
	}
	err := errors.Newf("standard deviation target of %.2f%% not reached in %d iterations (%s)", c.TargetStdDev, len(r.Samples), last)
	return errors.Mark(err, run.ErrNotConverged)
}

func (c *Controller) w() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}
