// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/progress"
	"rsc.io/perfrun/internal/run"
)

type testTester struct {
	*Tester
	fake *run.Fake
	out  bytes.Buffer
}

// writeArchive writes a gzipped tar holding a fake blackscholes build.
func writeArchive(t *testing.T, file string) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	for _, f := range []struct {
		name string
		mode int64
		body string
	}{
		{"blackscholes_cpp_serial", 0755, "#!/bin/sh\n"},
		{"in_10M.txt", 0644, "10000000\n"},
	} {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: f.name, Mode: f.mode, Size: int64(len(f.body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0666))
}

// testConfig returns a configuration that runs blackscholes from a local
// archive, with definitions written to a temporary --config file.
func testConfig(t *testing.T) *Config {
	dir := t.TempDir()
	archive := filepath.Join(dir, "Linux-blackscholes.tar.gz")
	writeArchive(t, archive)
	defs := fmt.Sprintf(`benchmarks:
  - name: blackscholes
    archive:
      linux: %s
    command: [blackscholes_cpp_serial, "1", in_10M.txt, prices.txt]
    timing: '\[HOOKS\] Total time spent in ROI: (\d+\.?\d*)s'
`, archive)
	config := filepath.Join(dir, "benchmarks.yaml")
	require.NoError(t, os.WriteFile(config, []byte(defs), 0666))

	return &Config{
		Window:     5,
		StdDev:     1,
		Iterations: 1,
		TargetDir:  filepath.Join(dir, "target"),
		Benchmark:  "blackscholes",
		ConfigFile: config,
		CSV:        filepath.Join(dir, "stability.csv"),
		LogLevel:   "info",
		OS:         "linux",
	}
}

// newTestTester returns a Tester whose benchmark runs report
// the given timings in order, repeating the last one.
func newTestTester(t *testing.T, cfg *Config, timings ...float64) *testTester {
	tt := &testTester{fake: new(run.Fake)}
	tt.Tester = &Tester{
		cfg:  cfg,
		exec: tt.fake,
		fs:   new(fsutil.Local),
		log:  hclog.NewNullLogger(),
		out:  &tt.out,
		disp: progress.New(&tt.out),
	}
	tt.init()
	n := 0
	tt.fake.OnFunc("", func(c *run.Cmd) (string, error) {
		v := timings[min(n, len(timings)-1)]
		n++
		return fmt.Sprintf("PARSEC Benchmark Suite\n[HOOKS] Total time spent in ROI: %gs\n[HOOKS] Terminating\n", v), nil
	})
	return tt
}

func (tt *testTester) csv(t *testing.T) string {
	data, err := os.ReadFile(tt.cfg.CSV)
	require.NoError(t, err)
	return string(data)
}

func TestFixed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Iterations = 3
	tt := newTestTester(t, cfg, 2.5)
	require.NoError(t, tt.Run())
	assert.Equal(t, "blackscholes,stability,2.5\nblackscholes,stability,2.5\nblackscholes,stability,2.5\n", tt.csv(t))

	dir := filepath.Join(cfg.TargetDir, "blackscholes")
	assert.FileExists(t, filepath.Join(dir, "blackscholes.tar.gz"))
	assert.FileExists(t, filepath.Join(dir, "in_10M.txt"))
	require.Len(t, tt.fake.Cmds, 3)
	c := tt.fake.Cmds[0]
	assert.Equal(t, dir, c.Dir)
	assert.Equal(t, []string{filepath.Join(dir, "blackscholes_cpp_serial"), "1", "in_10M.txt", "prices.txt"}, c.Args)
	assert.Contains(t, tt.out.String(), "Running iteration 3 of 3 - 2.500000s")
	assert.Contains(t, tt.out.String(), "Hit target of < 1.00%")
}

func TestFixedSingleRun(t *testing.T) {
	tt := newTestTester(t, testConfig(t), 7.25)
	require.NoError(t, tt.Run())
	assert.Equal(t, "blackscholes,stability,7.25\n", tt.csv(t))
}

func TestFixedUnstable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Iterations = 5
	tt := newTestTester(t, cfg, 1, 2, 3, 4, 5)
	err := tt.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrNotConverged), "%v", err)
	assert.Equal(t, 5, strings.Count(tt.csv(t), "\n"))
	assert.Contains(t, tt.out.String(), "Benchmark failed to reach desired standard deviation")
}

func TestStabilization(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stabilization = true
	cfg.Iterations = 20
	cfg.Summary = filepath.Join(t.TempDir(), "summary.html")
	tt := newTestTester(t, cfg, 9, 1, 5, 20, 4, 4, 4, 4, 4)
	require.NoError(t, tt.Run())

	// After the eighth run the window 20, 4, 4, 4, 4 trims to 4, 4, 4.
	assert.Len(t, tt.fake.Cmds, 8)
	assert.Equal(t, 8, strings.Count(tt.csv(t), "\n"))
	assert.Contains(t, tt.out.String(), "Hit target of < 1.00%, stopping")

	html, err := os.ReadFile(cfg.Summary)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), "converged: true")
}

func TestStabilizationZeroTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stabilization = true
	cfg.StdDev = 0
	cfg.Iterations = 10
	tt := newTestTester(t, cfg, 2, 3, 3, 3, 3)
	require.NoError(t, tt.Run())
	// Only a window whose trimmed runs are identical meets a zero target.
	assert.Len(t, tt.fake.Cmds, 5)
}

func TestStabilizationGivesUp(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stabilization = true
	cfg.Iterations = 6
	tt := newTestTester(t, cfg, 1, 10, 100, 1000, 1, 10, 100)
	err := tt.Run()
	assert.True(t, errors.Is(err, run.ErrNotConverged), "%v", err)
	assert.Len(t, tt.fake.Cmds, 6)
	assert.Equal(t, 6, strings.Count(tt.csv(t), "\n"))
}

func TestRunFailureKeepsResults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Iterations = 4
	tt := newTestTester(t, cfg, 3)
	n := 0
	tt.fake.OnFunc("", func(c *run.Cmd) (string, error) {
		n++
		if n == 3 {
			return "", errors.New("exit status 139")
		}
		return "[HOOKS] Total time spent in ROI: 3s\n", nil
	})
	err := tt.Run()
	assert.True(t, errors.Is(err, run.ErrCommand), "%v", err)
	assert.Equal(t, "blackscholes,stability,3\nblackscholes,stability,3\n", tt.csv(t))
}

func TestMissingTiming(t *testing.T) {
	cfg := testConfig(t)
	tt := newTestTester(t, cfg, 3)
	tt.fake.On("", "Segmentation fault\n", nil)
	err := tt.Run()
	assert.True(t, errors.Is(err, run.ErrParse), "%v", err)
	assert.NoFileExists(t, cfg.CSV)
}

func TestNoUnpack(t *testing.T) {
	cfg := testConfig(t)
	cfg.NoUnpack = true
	cfg.Offline = true
	cfg.ConfigFile = ""
	tt := newTestTester(t, cfg, 3)
	require.NoError(t, tt.Run())
	// Nothing was downloaded or unpacked.
	entries, err := os.ReadDir(filepath.Join(cfg.TargetDir, "blackscholes"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnknownOS(t *testing.T) {
	cfg := testConfig(t)
	cfg.OS = "plan9"
	tt := newTestTester(t, cfg, 3)
	err := tt.Run()
	assert.True(t, errors.Is(err, run.ErrConfig), "%v", err)
	assert.Empty(t, tt.fake.Cmds)
}
