// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loop

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/perfrun/internal/run"
)

// series returns a sampler that replays values and counts calls.
func series(calls *int, values ...float64) Sampler {
	return func(i int) (float64, error) {
		*calls++
		return values[(i-1)%len(values)], nil
	}
}

func TestStabilizeConstant(t *testing.T) {
	var buf bytes.Buffer
	c := &Controller{Mode: Stabilize, Iterations: 20, Window: 5, TargetStdDev: 1, Out: &buf}
	calls := 0
	r, err := c.Run(series(&calls, 100))
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.True(t, r.Converged)
	assert.Len(t, r.Samples, 5)
	require.NotNil(t, r.Convergence)
	assert.Equal(t, 0.0, r.Convergence.PercentOfMedian)
	assert.Contains(t, buf.String(), "Running iteration 5 of 20 - ")
	assert.Contains(t, buf.String(), "Hit target of < 1.00%, stopping")
	assert.NotContains(t, buf.String(), "Running iteration 6")
}

func TestStabilizeNeverConverges(t *testing.T) {
	c := &Controller{Mode: Stabilize, Iterations: 5, Window: 5, TargetStdDev: 1}
	calls := 0
	r, err := c.Run(series(&calls, 10, 100, 30, 70, 50))
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrNotConverged))
	assert.Equal(t, 5, calls)
	assert.Equal(t, []float64{10, 100, 30, 70, 50}, r.Samples)
	assert.False(t, r.Converged)
	require.NotNil(t, r.Convergence)
}

func TestStabilizeLaterWindow(t *testing.T) {
	c := &Controller{Mode: Stabilize, Iterations: 10, Window: 4, TargetStdDev: 1}
	calls := 0
	values := []float64{5, 50, 500, 7, 7, 7, 7, 7}
	r, err := c.Run(func(i int) (float64, error) {
		calls++
		return values[i-1], nil
	})
	require.NoError(t, err)
	// Windows ending at 4 and 5 keep a spread after trimming; the one ending at 6 does not.
	assert.Equal(t, 6, calls)
	assert.True(t, r.Converged)
}

func TestSamplerFailureStops(t *testing.T) {
	c := &Controller{Mode: Stabilize, Iterations: 10, Window: 3, TargetStdDev: 1}
	calls := 0
	r, err := c.Run(func(i int) (float64, error) {
		calls++
		if i == 3 {
			return 0, errors.New("benchmark exited with status 1")
		}
		return float64(i), nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrCommand))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []float64{1, 2}, r.Samples)
}

func TestSamplerParseFailureKeepsClass(t *testing.T) {
	c := &Controller{Mode: Fixed, Iterations: 2}
	_, err := c.Run(func(int) (float64, error) {
		return 0, errors.Mark(errors.New("no timing in output"), run.ErrParse)
	})
	assert.True(t, errors.Is(err, run.ErrParse))
	assert.False(t, errors.Is(err, run.ErrCommand))
}

func TestFixed(t *testing.T) {
	c := &Controller{Mode: Fixed, Iterations: 4, TargetStdDev: 1}
	calls := 0
	r, err := c.Run(series(&calls, 100, 100, 100, 100))
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.True(t, r.Converged)
	require.NotNil(t, r.Convergence)
	assert.Equal(t, 4, r.Convergence.Window)

	calls = 0
	r, err = c.Run(series(&calls, 10, 20, 30, 40))
	assert.True(t, errors.Is(err, run.ErrNotConverged))
	assert.Equal(t, 4, calls)
	assert.Len(t, r.Samples, 4)
}

func TestFixedShortRunSkipsEvaluation(t *testing.T) {
	var buf bytes.Buffer
	c := &Controller{Mode: Fixed, Iterations: 1, TargetStdDev: 1, Out: &buf}
	calls := 0
	r, err := c.Run(series(&calls, 3.5))
	require.NoError(t, err)
	assert.True(t, r.Converged)
	assert.Nil(t, r.Convergence)
	assert.Contains(t, buf.String(), "skipping standard deviation check")
}

func TestCheck(t *testing.T) {
	_, err := (&Controller{Mode: Fixed, Iterations: 0}).Run(nil)
	assert.True(t, errors.Is(err, run.ErrConfig))
	_, err = (&Controller{Mode: Stabilize, Iterations: 5, Window: 2}).Run(nil)
	assert.True(t, errors.Is(err, run.ErrConfig))
	assert.NoError(t, (&Controller{Mode: Fixed, Iterations: 1, Window: 0}).Check())
}
