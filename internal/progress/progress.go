// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package progress displays the elapsed time of long-running steps.
//
// On a terminal that supports vt100 control codes, a timer ticks at the
// right edge of the current line while the step runs.
// Otherwise nothing is printed until the step finishes.
package progress

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// A Display writes progress for one output stream.
type Display struct {
	w      io.Writer
	pretty bool // w supports vt100 control codes
	now    func() time.Time
}

// New returns a Display writing to w.
// The live timer is enabled only when w is a terminal.
func New(w io.Writer) *Display {
	d := &Display{w: w, now: time.Now}
	if f, ok := w.(*os.File); ok {
		d.pretty = !(os.Getenv("TERM") == "" || os.Getenv("TERM") == "dumb") && term.IsTerminal(int(f.Fd()))
	}
	return d
}

// Start starts timing a step and returns a function that stops the timer
// and returns the elapsed time.
func (d *Display) Start() func() time.Duration {
	start := d.now()
	if !d.pretty {
		return func() time.Duration { return d.now().Sub(start) }
	}
	stopc := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var now string
		for delta := time.Duration(0); ; delta += time.Second {
			select {
			case <-time.After(time.Until(start.Add(delta))):
			case <-stopc:
				d.printEOL(strings.Repeat(" ", len(now)), "")
				return
			}
			now = fmt.Sprintf("%d:%02d", delta/time.Minute, (delta/time.Second)%60)
			d.printEOL(now, "")
		}
	}()
	return func() time.Duration {
		close(stopc)
		wg.Wait()
		return d.now().Sub(start)
	}
}

// Elapsed formats a step duration for display.
func Elapsed(d time.Duration) string {
	if d >= time.Minute {
		return d.Round(time.Second).String()
	}
	return humanize.FtoaWithDigits(d.Seconds(), 3) + "s"
}

// printEOL prints text at the end of the current line.
func (d *Display) printEOL(text string, attrs string) {
	if !d.pretty {
		fmt.Fprint(d.w, text)
		return
	}

	var buf bytes.Buffer
	if attrs != "" {
		fmt.Fprintf(&buf, "\x1b[%sm", attrs)
	}
	// Move to the end of the line, then back up and print text.
	fmt.Fprintf(&buf, "\x1b[999C\x1b[%dD%s", len(text), text)
	if attrs != "" {
		fmt.Fprintf(&buf, "\x1b[0m")
	}
	d.w.Write(buf.Bytes())
}

// Pass marks the current line as succeeded.
func (d *Display) Pass() {
	if d.pretty {
		d.printEOL("PASS", "1;32") // bold green
	}
}

// Fail marks the current line as failed.
func (d *Display) Fail() {
	if d.pretty {
		d.printEOL("FAIL", "1;31") // bold red
	}
}
