// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report summarizes result series as a markdown table,
// optionally rendered to HTML.
package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/montanaflynn/stats"
	"rsc.io/markdown"

	"rsc.io/perfrun/internal/fsutil"
)

// A Row summarizes one series.
type Row struct {
	Name   string
	Count  int
	Min    float64
	Max    float64
	Median float64
	Mean   float64
	StdDev float64 // population standard deviation
}

// A Summary is a titled list of series summaries.
type Summary struct {
	Title string
	Notes []string // free-form lines printed above the table
	Rows  []Row
}

// Add summarizes values under name.
func (s *Summary) Add(name string, values []float64) error {
	r := Row{Name: name, Count: len(values)}
	if len(values) == 0 {
		s.Rows = append(s.Rows, r)
		return nil
	}
	var err error
	data := stats.Float64Data(values)
	if r.Min, err = data.Min(); err != nil {
		return errors.Wrapf(err, "%s", name)
	}
	if r.Max, err = data.Max(); err != nil {
		return errors.Wrapf(err, "%s", name)
	}
	if r.Median, err = data.Median(); err != nil {
		return errors.Wrapf(err, "%s", name)
	}
	if r.Mean, err = data.Mean(); err != nil {
		return errors.Wrapf(err, "%s", name)
	}
	if r.StdDev, err = stats.StandardDeviationPopulation(data); err != nil {
		return errors.Wrapf(err, "%s", name)
	}
	s.Rows = append(s.Rows, r)
	return nil
}

// Markdown returns the summary as a markdown document.
func (s *Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	for _, n := range s.Notes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	if len(s.Notes) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("| series | n | min | max | median | mean | stddev |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range s.Rows {
		if r.Count == 0 {
			fmt.Fprintf(&b, "| %s | 0 | | | | | |\n", r.Name)
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
			r.Name, r.Count, r.Min, r.Max, r.Median, r.Mean, r.StdDev)
	}
	return b.String()
}

// HTML returns the summary rendered as HTML.
func (s *Summary) HTML() string {
	p := &markdown.Parser{Table: true}
	return markdown.ToHTML(p.Parse(s.Markdown()))
}

// Write writes the summary to file, as HTML if file ends in ".html"
// and as markdown otherwise.
func (s *Summary) Write(fsys fsutil.FileSystem, file string) error {
	var data bytes.Buffer
	switch filepath.Ext(file) {
	case ".html", ".htm":
		data.WriteString(s.HTML())
	default:
		data.WriteString(s.Markdown())
	}
	return errors.Wrapf(fsys.WriteFile(file, data.Bytes(), 0666), "writing summary")
}
