// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Stability runs a native benchmark repeatedly and checks that
its timings are stable.

Usage:

	stability [--stabilization] [--stabilization-iterations=5] \
		[--std-dev=1] [--iterations=1] [--target-dir=dir] \
		[--offline] [--no-unpack] [--benchmark=blackscholes] [--config=file]

Stability downloads the benchmark archive for the host OS into
target-dir/<benchmark>/<benchmark>.tar.gz and unpacks it there.
The --offline flag skips the download and unpacks an archive that is
already in place; --no-unpack skips both and runs what is already unpacked.
The default target directory is $WORKSPACE or, if that is unset,
the current directory.

By default stability runs the benchmark --iterations times.
It then discards the single fastest and slowest runs and computes the
population standard deviation of the rest as a percentage of their median.
If that is more than --std-dev, stability fails.
Runs shorter than three iterations are not checked.

With --stabilization, stability instead evaluates the last
--stabilization-iterations runs after every run and stops as soon as they
are within --std-dev. In this mode --iterations is the most runs to try;
if the timings are still unstable after that many, stability fails.

Either way, the timings are written to stability.csv (or the --csv file),
one “benchmark,stability,seconds” line per run, even when stability fails.

The built-in benchmark is blackscholes, from PARSEC.
The --config flag reads other benchmark definitions from a YAML file:

	benchmarks:
	  - name: blackscholes
	    archive:
	      linux: https://example.com/Linux-blackscholes.tar.gz
	      windows: C:\archives\Windows-blackscholes.tar.gz
	    command: [blackscholes_cpp_serial, "1", in_10M.txt, prices.txt]
	    timing: '\[HOOKS\] Total time spent in ROI: (\d+\.?\d*)s'

The first group of the timing pattern must match the run time in seconds.

Stability exits with status 1 on any failure.
*/
package main
