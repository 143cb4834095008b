// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"rsc.io/perfrun/internal/cliutil"
	"rsc.io/perfrun/internal/run"
)

// A Config holds the settings for one benchmark run.
// It is filled in from flags and the environment and not changed afterward.
type Config struct {
	OS             string          // --os: windows or linux
	Arch           string          // --arch: x86 or x64
	Workspace      string          // --workspace, default $WORKSPACE
	CoreCLRBinPath string          // --coreclrbinpath, default derived from workspace
	CLRSetup       cliutil.BoolArg // --clrsetup: fetch and build coreclr
	RunCrossgen    cliutil.BoolArg // --runcrossgen: crossgen the published app
	Branch         string          // --branch: coreclr branch

	Iterations     int      // --iterations
	Channel        string   // --channel: dotnet install channel
	RuntimeVersion string   // --runtime-version: shared runtime major.minor to patch
	SteadyState    bool     // --steadystate: also collect steady-state response times
	Suffix         string   // --suffix: appended to result file names and labels
	Env            []string // --env: extra NAME=VALUE for the benchmark processes
	SubstDrive     string   // --subst-drive: windows drive letter to map the workspace to
	Summary        string   // --summary: write a markdown or HTML summary here
	LogLevel       string   // --log-level

	CoreCLRRepo    string // --coreclr-repo
	JitBenchRepo   string // --jitbench-repo
	JitBenchBranch string // --jitbench-branch
}

func defaultOS() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "linux"
}

// RegisterFlags defines the command-line flags that fill in c.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	*c = Config{
		OS:             defaultOS(),
		Arch:           "x64",
		CLRSetup:       true,
		RunCrossgen:    true,
		Branch:         "master",
		Iterations:     100,
		Channel:        "master",
		RuntimeVersion: "2.0",
		CoreCLRRepo:    "https://github.com/dotnet/coreclr",
		JitBenchRepo:   "https://github.com/davmason/JitBench",
		JitBenchBranch: "dev",
	}
	flags.StringVar(&c.OS, "os", c.OS, "target operating system: windows or linux")
	flags.StringVar(&c.Arch, "arch", c.Arch, "target architecture: x86 or x64")
	flags.StringVar(&c.Workspace, "workspace", "", "workspace `dir` (default $WORKSPACE)")
	flags.StringVar(&c.CoreCLRBinPath, "coreclrbinpath", "", "coreclr product `dir` to patch into the shared runtime (default under the workspace)")
	flags.Var(&c.CLRSetup, "clrsetup", "fetch and build coreclr before benchmarking")
	flags.Var(&c.RunCrossgen, "runcrossgen", "crossgen the published application")
	flags.StringVar(&c.Branch, "branch", c.Branch, "coreclr `branch` to build")
	flags.IntVar(&c.Iterations, "iterations", c.Iterations, "run the application `N` times")
	flags.StringVar(&c.Channel, "channel", c.Channel, "dotnet install `channel`")
	flags.StringVar(&c.RuntimeVersion, "runtime-version", c.RuntimeVersion, "patch shared runtimes with this major.minor `version`")
	flags.BoolVar(&c.SteadyState, "steadystate", false, "also record steady-state response times")
	flags.StringVar(&c.Suffix, "suffix", "", "`suffix` for result files and metric labels")
	flags.StringArrayVar(&c.Env, "env", nil, "set `NAME=VALUE` for the benchmarked application (repeatable)")
	flags.StringVar(&c.SubstDrive, "subst-drive", "", "on windows, map the workspace to drive `X:` while running")
	flags.StringVar(&c.Summary, "summary", "", "write a summary to `file` (.md or .html)")
	flags.StringVar(&c.LogLevel, "log-level", "", "log `level` (default $PERFRUN_LOG_LEVEL or info)")
	flags.StringVar(&c.CoreCLRRepo, "coreclr-repo", c.CoreCLRRepo, "coreclr git `url`")
	flags.StringVar(&c.JitBenchRepo, "jitbench-repo", c.JitBenchRepo, "JitBench git `url`")
	flags.StringVar(&c.JitBenchBranch, "jitbench-branch", c.JitBenchBranch, "JitBench `branch`")
}

// Finish applies environment defaults and validates c.
func (c *Config) Finish(env cliutil.Env) error {
	if c.Workspace == "" {
		c.Workspace = env.Workspace
	}
	if c.LogLevel == "" {
		c.LogLevel = env.LogLevel
	}
	if err := c.check(); err != nil {
		return errors.Mark(err, run.ErrConfig)
	}
	c.Workspace = filepath.Clean(c.Workspace)
	if c.SubstDrive != "" {
		c.SubstDrive = strings.ToUpper(strings.TrimSuffix(c.SubstDrive, ":")) + ":"
	}
	return nil
}

func (c *Config) check() error {
	if c.Workspace == "" {
		return errors.New("no workspace: set --workspace or WORKSPACE")
	}
	switch c.OS {
	case "windows", "linux":
	default:
		return errors.Newf("unknown --os %q: want windows or linux", c.OS)
	}
	switch c.Arch {
	case "x86", "x64":
	default:
		return errors.Newf("unknown --arch %q: want x86 or x64", c.Arch)
	}
	if c.Iterations < 1 {
		return errors.Newf("--iterations must be at least 1, have %d", c.Iterations)
	}
	if _, err := semver.NewVersion(c.RuntimeVersion); err != nil {
		return errors.Wrapf(err, "--runtime-version %q", c.RuntimeVersion)
	}
	for _, kv := range c.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return errors.Newf("--env %q: want NAME=VALUE", kv)
		}
	}
	if strings.ContainsAny(c.Suffix, ",\n/\\") {
		return errors.Newf("--suffix %q contains a separator", c.Suffix)
	}
	if c.SubstDrive != "" {
		if c.OS != "windows" {
			return errors.New("--subst-drive is only supported with --os=windows")
		}
		d := strings.TrimSuffix(c.SubstDrive, ":")
		if len(d) != 1 || !strings.Contains("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ", d) {
			return errors.Newf("--subst-drive %q: want a drive letter", c.SubstDrive)
		}
	}
	return nil
}

// productOS is the OS name coreclr uses in its build output directory.
func (c *Config) productOS() string {
	if c.OS == "windows" {
		return "Windows_NT"
	}
	return "Linux"
}
