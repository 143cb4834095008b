// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logparse extracts timing series from benchmark log output.
//
// A log is scanned line by line against a table of [Marker]s.
// Each marker names the line prefix that announces a measurement
// and the series the measurement belongs to.
package logparse

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/run"
)

// A Marker maps a log line prefix to a series.
type Marker struct {
	Prefix string // line prefix announcing a measurement
	Key    string // series key, also the base name of its output file
	Label  string // metric label written next to each value

	// Extract returns the measurement in line.
	// If nil, ExtractNumber is used.
	Extract func(line string) (string, error)
}

// A Table is the set of markers a log is parsed against.
// The first marker's series is the reference length for the others.
type Table struct {
	Markers  []Marker
	Failures []string // line prefixes that abort parsing
}

// Series holds the values parsed for each marker key, in log order.
type Series map[string][]string

// ExtractNumber returns the first whitespace-separated field of line
// that starts with a digit, with its two-character unit (like "ms") removed.
// The remainder must be all digits.
func ExtractNumber(line string) (string, error) {
	for _, f := range strings.Fields(line) {
		if f[0] < '0' || f[0] > '9' {
			continue
		}
		num := f[:max(len(f)-2, 0)]
		if num == "" || strings.Trim(num, "0123456789") != "" {
			return "", errors.Newf("expected number, found %q", f)
		}
		return num, nil
	}
	return "", errors.Newf("no number in %q", strings.TrimSpace(line))
}

// Parse reads the log in r and returns the series for each marker in t.
// It fails if a line matches one of t.Failures, if a measurement cannot
// be extracted, or if any series does not hold exactly expected values.
func (t *Table) Parse(r io.Reader, expected int) (Series, error) {
	if len(t.Markers) == 0 {
		return nil, errors.Mark(errors.New("no markers to parse"), run.ErrConfig)
	}
	series := make(Series)
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	for lineno := 1; s.Scan(); lineno++ {
		line := s.Text()
		for _, f := range t.Failures {
			if strings.HasPrefix(line, f) {
				return nil, errors.Mark(errors.Newf("line %d: benchmark reported failure: %s", lineno, line), run.ErrParse)
			}
		}
		m := t.match(line)
		if m == nil {
			continue
		}
		extract := m.Extract
		if extract == nil {
			extract = ExtractNumber
		}
		v, err := extract(line)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "line %d (%s)", lineno, m.Key), run.ErrParse)
		}
		series[m.Key] = append(series[m.Key], v)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "reading log")
	}
	if err := t.check(series, expected); err != nil {
		return nil, errors.Mark(err, run.ErrParse)
	}
	return series, nil
}

// ParseFile is like Parse but reads the named file.
func (t *Table) ParseFile(name string, expected int) (Series, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := t.Parse(f, expected)
	return s, errors.Wrapf(err, "%s", name)
}

func (t *Table) match(line string) *Marker {
	for i := range t.Markers {
		if strings.HasPrefix(line, t.Markers[i].Prefix) {
			return &t.Markers[i]
		}
	}
	return nil
}

// check verifies that every series has the reference length
// and that the reference length is the expected iteration count.
func (t *Table) check(series Series, expected int) error {
	ref := t.Markers[0]
	n := len(series[ref.Key])
	if n == 0 {
		return errors.Newf("missing data: no %q lines found", ref.Prefix)
	}
	for _, m := range t.Markers[1:] {
		if got := len(series[m.Key]); got != n {
			return errors.Newf("missing data: series %s has %d values, %s has %d", m.Key, got, ref.Key, n)
		}
	}
	if n != expected {
		return errors.Newf("missing data: expected %d iterations, found %d", expected, n)
	}
	return nil
}
