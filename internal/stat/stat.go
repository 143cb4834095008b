// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stat decides whether a series of timings has stabilized.
package stat

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/montanaflynn/stats"

	"rsc.io/perfrun/internal/run"
)

// MinWindow is the smallest usable window: trimming the extremes
// must leave at least one sample.
const MinWindow = 3

// ErrTooFew reports that a series is shorter than the window.
// It is not a failure; callers skip evaluation until enough samples exist.
var ErrTooFew = errors.New("not enough samples")

// A Convergence is the trimmed statistics of the last Window samples.
type Convergence struct {
	Window          int
	Median          float64
	Mean            float64
	StdDev          float64 // population standard deviation
	PercentOfMedian float64 // StdDev as a percentage of Median
}

func (c Convergence) String() string {
	return fmt.Sprintf("standard deviation %.2f%% of median %.3f over the last %d iterations", c.PercentOfMedian, c.Median, c.Window)
}

// Within reports whether c meets a target percent-of-median deviation.
func (c Convergence) Within(target float64) bool {
	return c.PercentOfMedian <= target
}

// CheckWindow returns an error if window is too small to evaluate.
func CheckWindow(window int) error {
	if window < MinWindow {
		return errors.Mark(errors.Newf("window of %d samples is too small: need at least %d", window, MinWindow), run.ErrConfig)
	}
	return nil
}

// Evaluate computes the convergence of the last window samples.
//
// The window is sorted and its single lowest and single highest values
// are discarded before the median, mean and population standard deviation
// are computed, so that one outlier at either end does not dominate.
func Evaluate(samples []float64, window int) (Convergence, error) {
	if err := CheckWindow(window); err != nil {
		return Convergence{}, err
	}
	if len(samples) < window {
		return Convergence{}, errors.Wrapf(ErrTooFew, "have %d, need %d", len(samples), window)
	}

	trimmed := slices.Clone(samples[len(samples)-window:])
	slices.Sort(trimmed)
	trimmed = trimmed[1 : len(trimmed)-1]

	// stats.Median averages the two middle values of an even-sized set.
	median, err := stats.Median(trimmed)
	if err != nil {
		return Convergence{}, errors.Wrap(err, "median")
	}
	mean, err := stats.Mean(trimmed)
	if err != nil {
		return Convergence{}, errors.Wrap(err, "mean")
	}
	sd, err := stats.StandardDeviationPopulation(trimmed)
	if err != nil {
		return Convergence{}, errors.Wrap(err, "standard deviation")
	}

	c := Convergence{Window: window, Median: median, Mean: mean, StdDev: sd}
	switch {
	case sd == 0:
		c.PercentOfMedian = 0
	case median == 0:
		return c, errors.Newf("standard deviation %g of a zero median is unbounded", sd)
	default:
		c.PercentOfMedian = sd / median * 100
	}
	return c, nil
}
