// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cliutil holds the command-line plumbing shared by the commands:
// environment defaults, logging, and turning errors into exit codes.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rsc.io/perfrun/internal/run"
)

// Env holds the settings taken from the environment.
// Command-line flags override them.
type Env struct {
	Workspace string `envconfig:"WORKSPACE"`
	LogLevel  string `envconfig:"PERFRUN_LOG_LEVEL" default:"info"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, errors.Mark(errors.Wrap(err, "reading environment"), run.ErrConfig)
	}
	return env, nil
}

// NewLogger returns the root logger for a command.
func NewLogger(name, level string, w io.Writer) (hclog.Logger, error) {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return nil, errors.Mark(errors.Newf("unknown log level %q", level), run.ErrConfig)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: w,
	}), nil
}

// Main runs cmd and exits: 0 on success, 1 after printing any error.
func Main(cmd *cobra.Command) {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
	os.Exit(0)
}

// BoolArg is a boolean flag that takes an explicit argument,
// so that both "--flag=false" and "--flag false" work.
type BoolArg bool

var _ pflag.Value = (*BoolArg)(nil)

func (b *BoolArg) String() string { return strconv.FormatBool(bool(*b)) }

func (b *BoolArg) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return errors.Newf("invalid boolean %q", s)
	}
	*b = BoolArg(v)
	return nil
}

func (b *BoolArg) Type() string { return "bool" }
