// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Preparing the JitBench application.

package main

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/gitsrc"
	"rsc.io/perfrun/internal/run"
)

// prepareJitBench fetches JitBench, installs a private dotnet into it,
// patches the installed shared runtime with the coreclr binaries,
// and publishes the MusicStore application.
func (b *Bench) prepareJitBench() error {
	repo := gitsrc.Repo{URL: b.cfg.JitBenchRepo, Branch: b.cfg.JitBenchBranch, Dir: b.jitbenchDir()}
	head, err := b.git.Sync(repo)
	if err != nil {
		return err
	}
	b.heads["JitBench"] = head

	for _, args := range b.installCommands() {
		if _, err := run.Run(b.exec, b.dotnetCmd(repo.Dir, args...)); err != nil {
			return errors.Wrap(err, "installing dotnet")
		}
	}

	info, err := run.Run(b.exec, b.dotnetCmd(repo.Dir, b.dotnet(), "--info"))
	if err != nil {
		return err
	}
	b.log.Debug("dotnet --info", "output", info)

	if _, err := run.Run(b.exec, b.dotnetCmd(b.appDir(), b.dotnet(), "restore")); err != nil {
		return err
	}
	if err := b.patchSharedRuntime(); err != nil {
		return err
	}
	if _, err := run.Run(b.exec, b.dotnetCmd(b.appDir(), b.dotnet(), "publish", "-c", "Release", "-f", "netcoreapp20")); err != nil {
		return err
	}

	if !b.cfg.RunCrossgen {
		return nil
	}
	b.log.Info("crossgen framework assemblies", "dir", b.publishDir())
	var crossgen []string
	if b.cfg.OS == "windows" {
		crossgen = []string{"powershell", "-NoProfile", "-ExecutionPolicy", "RemoteSigned", "-File", `.\Invoke-Crossgen.ps1`}
	} else {
		crossgen = []string{"./Invoke-Crossgen.sh"}
	}
	_, err = run.Run(b.exec, b.dotnetCmd(b.publishDir(), crossgen...))
	return err
}

// installCommands returns the commands that install the shared runtime
// and then the SDK into the JitBench .dotnet directory.
func (b *Bench) installCommands() [][]string {
	arch := b.cfg.Arch
	if b.cfg.OS == "windows" {
		ps := []string{"powershell", "-NoProfile", "-ExecutionPolicy", "RemoteSigned", "-File", `.\Dotnet-Install.ps1`}
		return [][]string{
			append(ps[:len(ps):len(ps)], "-SharedRuntime", "-InstallDir", ".dotnet", "-Channel", b.cfg.Channel, "-Architecture", arch),
			append(ps[:len(ps):len(ps)], "-InstallDir", ".dotnet", "-Architecture", arch),
		}
	}
	return [][]string{
		{"./dotnet-install.sh", "--shared-runtime", "--install-dir", ".dotnet", "--channel", b.cfg.Channel, "--architecture", arch},
		{"./dotnet-install.sh", "--install-dir", ".dotnet", "--architecture", arch},
	}
}

// dotnetCmd returns a command running in dir with the private dotnet
// first on PATH and the --env settings applied.
func (b *Bench) dotnetCmd(dir string, args ...string) *run.Cmd {
	return run.Command(args...).In(dir).With(b.childEnv()...)
}

// childEnv is the environment layered over the inherited one
// for every process that uses the private dotnet.
func (b *Bench) childEnv() []string {
	sep := ":"
	if b.cfg.OS == "windows" {
		sep = ";"
	}
	path := b.dotnetDir()
	if old := b.getenv("PATH"); old != "" {
		path += sep + old
	}
	env := []string{
		"PATH=" + path,
		"DOTNET_MULTILEVEL_LOOKUP=0",
		"DOTNET_SKIP_FIRST_TIME_EXPERIENCE=1",
	}
	return append(env, b.cfg.Env...)
}

// patchSharedRuntime copies the coreclr binaries over every installed
// shared runtime whose version matches --runtime-version.
func (b *Bench) patchSharedRuntime() error {
	want, err := semver.NewVersion(b.cfg.RuntimeVersion)
	if err != nil {
		return errors.Mark(err, run.ErrConfig)
	}
	shared := b.sharedRuntimeDir()
	entries, err := b.fs.ReadDir(shared)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "listing shared runtimes"), run.ErrCommand)
	}
	patched := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(shared, e.Name())
		v, err := semver.NewVersion(e.Name())
		if err != nil || v.Major() != want.Major() || v.Minor() != want.Minor() {
			b.log.Debug("skipping shared runtime", "dir", dir)
			continue
		}
		b.log.Info("patching shared runtime", "dir", dir, "from", b.coreclrBinPath())
		files, err := fsutil.PatchDir(b.fs, b.coreclrBinPath(), dir)
		if err != nil {
			return err
		}
		b.log.Debug("patched", "files", strings.Join(files, " "))
		patched++
	}
	if patched == 0 {
		return errors.Mark(errors.Newf("did not find a dotnet %s shared runtime to patch in %s", b.cfg.RuntimeVersion, shared), run.ErrConfig)
	}
	return nil
}
