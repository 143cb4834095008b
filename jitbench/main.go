// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"rsc.io/perfrun/internal/cliutil"
)

func newRootCmd() *cobra.Command {
	var cfg Config
	cmd := &cobra.Command{
		Use:   "jitbench",
		Short: "Measure MusicStore startup time on a locally built coreclr",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cliutil.LoadEnv()
			if err != nil {
				return err
			}
			if err := cfg.Finish(env); err != nil {
				return err
			}
			log, err := cliutil.NewLogger("jitbench", cfg.LogLevel, os.Stderr)
			if err != nil {
				return err
			}
			return newBench(&cfg, log).Run()
		},
	}
	cfg.RegisterFlags(cmd.Flags())
	return cmd
}

func main() {
	cliutil.Main(newRootCmd())
}
