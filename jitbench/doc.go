// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Jitbench measures the startup time of the MusicStore web application
running on a locally built coreclr.

Usage:

	jitbench [--workspace=dir] [--os=linux] [--arch=x64] \
		[--clrsetup=true] [--runcrossgen=true] [--branch=master] \
		[--coreclrbinpath=dir] [--iterations=100] [--summary=file]

Jitbench works in the workspace directory given by --workspace
or, if that flag is omitted, the WORKSPACE environment variable.

When --clrsetup is true (the default), jitbench clones or updates
coreclr at the given --branch into workspace/coreclr and builds
a release product for --arch. Otherwise it uses the binaries already in
--coreclrbinpath (default workspace/coreclr/bin/Product/<OS>.<arch>.Release).

Jitbench then clones or updates JitBench into workspace/JitBench,
installs a private dotnet shared runtime and SDK into JitBench/.dotnet,
restores MusicStore, and copies every coreclr product file over each
installed shared runtime whose version matches --runtime-version.
It publishes MusicStore and, when --runcrossgen is true, crossgens the
published framework assemblies.

Finally it runs MusicStore once to warm up and then --iterations times,
collecting the application output in workspace/output.txt.
For each metric it writes a file in the workspace with one
“label,value” line per run:

	startup.txt  JitBenchStartupTime, from “Server started in” lines
	request.txt  JitBenchRequestTime, from “Request took” lines

The --steadystate flag adds steadymin.txt, steadymax.txt, and steadyavg.txt
from the application's steady-state response time lines.
The --suffix flag is appended to both the file names and the labels,
so that runs with different --env settings can share a workspace.

The --summary flag writes a table of per-metric statistics
to the named file, as HTML if the name ends in .html
and as markdown otherwise.

On Windows, long workspace paths can break the coreclr build.
The --subst-drive=X flag maps the workspace to drive X: for the
duration of the run and removes the mapping before exiting.

Jitbench exits with status 1 after the first failing step.
*/
package main
