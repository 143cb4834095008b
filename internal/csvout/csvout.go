// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package csvout writes result series as flat comma-separated files
// for downstream reporting.
//
// The files have no header and no quoting: every line is the
// comma-joined list of fields, and fields never contain commas.
package csvout

import (
	"bytes"
	"io/fs"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/fsutil"
)

// Lines formats one line per value, each prefixed by the given fields.
func Lines[T any](prefix []string, values []T, format func(T) string) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		for _, f := range prefix {
			buf.WriteString(f)
			buf.WriteByte(',')
		}
		buf.WriteString(format(v))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteSeries writes values to file, one "label,value" line each,
// replacing any existing file.
func WriteSeries(fsys fsutil.FileSystem, file, label string, values []string) error {
	if err := checkField(label); err != nil {
		return err
	}
	return replace(fsys, file, Lines([]string{label}, values, func(s string) string { return s }))
}

// WriteStability writes values to file, one "name,stability,value" line each,
// replacing any existing file.
func WriteStability(fsys fsutil.FileSystem, file, name string, values []float64) error {
	if err := checkField(name); err != nil {
		return err
	}
	return replace(fsys, file, Lines([]string{name, "stability"}, values, FormatFloat))
}

// FormatFloat formats a timing in the shortest form that reads back exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func checkField(s string) error {
	if strings.ContainsAny(s, ",\n") {
		return errors.Newf("field %q contains a separator", s)
	}
	return nil
}

func replace(fsys fsutil.FileSystem, file string, data []byte) error {
	if err := fsys.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "removing old %s", file)
	}
	return errors.Wrapf(fsys.WriteFile(file, data, 0666), "writing %s", file)
}
