// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package run

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func needSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh in PATH")
	}
}

func TestLocalOutput(t *testing.T) {
	needSh(t)
	out, err := Run(new(Local), &Cmd{Args: []string{"sh", "-c", "echo '  hello  '"}, Mode: Trim})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestLocalEnvAndDir(t *testing.T) {
	needSh(t)
	dir := t.TempDir()
	c := Command("PERFRUN_A=1", "sh", "-c", `echo "$PERFRUN_A $PERFRUN_B $(pwd)"`).In(dir).With("PERFRUN_B=2")
	c.Mode = Trim
	out, err := Run(new(Local), c)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, []string{"1 2 " + dir, "1 2 " + want}, out)
}

func TestLocalStderr(t *testing.T) {
	needSh(t)
	out, err := Run(new(Local), &Cmd{Args: []string{"sh", "-c", "echo out; echo err 1>&2"}})
	require.NoError(t, err)
	assert.Equal(t, "out\n", out)

	out, err = Run(new(Local), &Cmd{Args: []string{"sh", "-c", "echo out; echo err 1>&2"}, Mode: Stderr})
	require.NoError(t, err)
	assert.Equal(t, "out\nerr\n", out)
}

func TestLocalStream(t *testing.T) {
	needSh(t)
	var buf bytes.Buffer
	out, err := Run(new(Local), &Cmd{Args: []string{"sh", "-c", "echo one; echo two"}, Out: &buf})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestLocalFailure(t *testing.T) {
	needSh(t)
	out, err := Run(new(Local), Command("sh", "-c", "echo partial; exit 3"))
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, ErrCommand))
	assert.Contains(t, err.Error(), "partial")
	assert.Equal(t, ErrCommand, Class(err))
}

func TestLocalPathWithEquals(t *testing.T) {
	needSh(t)
	dir := filepath.Join(t.TempDir(), "label=linux")
	require.NoError(t, os.MkdirAll(dir, 0777))
	bin := filepath.Join(dir, "bench")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho \"$PERFRUN_A ran $1\"\n"), 0777))

	out, err := Run(new(Local), &Cmd{Args: []string{bin, "arg"}, Mode: Trim})
	require.NoError(t, err)
	assert.Equal(t, "ran arg", out)

	out, err = Run(new(Local), &Cmd{Args: []string{"PERFRUN_A=1", bin, "arg"}, Mode: Trim})
	require.NoError(t, err)
	assert.Equal(t, "1 ran arg", out)
}

func TestIsEnvWord(t *testing.T) {
	for _, arg := range []string{"A=1", "PERFRUN_A=", "_x=y", "DOTNET_ROOT=/a/b=c"} {
		assert.True(t, isEnvWord(arg), arg)
	}
	for _, arg := range []string{"sh", "=x", "1A=2", "/ws/label=linux/bench", `C:\ws\a=b\dotnet.exe`, "./x=y", "a.b=c"} {
		assert.False(t, isEnvWord(arg), arg)
	}
}

func TestLocalMissingCommand(t *testing.T) {
	_, err := Run(new(Local), Command())
	assert.True(t, errors.Is(err, ErrCommand))
	_, err = Run(new(Local), Command("A=1", "B=2"))
	assert.True(t, errors.Is(err, ErrCommand))
}

func TestFake(t *testing.T) {
	f := new(Fake)
	f.On("git", "generic\n", nil)
	f.On("git pull", "pulled\n", nil)
	f.On("make", "", errors.New("exit status 2"))

	out, err := Run(f, &Cmd{Args: []string{"git", "pull"}, Mode: Trim})
	require.NoError(t, err)
	assert.Equal(t, "pulled", out)

	out, err = Run(f, Command("git", "status"))
	require.NoError(t, err)
	assert.Equal(t, "generic\n", out)

	_, err = Run(f, Command("make", "all").In("src"))
	assert.True(t, errors.Is(err, ErrCommand))

	out, err = Run(f, Command("true"))
	require.NoError(t, err)
	assert.Empty(t, out)

	assert.Equal(t, []string{"git pull", "git status", "(cd src && make all)", "true"}, f.Lines())
}

func TestFakeStream(t *testing.T) {
	f := new(Fake)
	n := 0
	f.OnFunc("bench", func(*Cmd) (string, error) {
		n++
		return "run\n", nil
	})
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		_, err := Run(f, &Cmd{Args: []string{"bench"}, Out: &buf})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, "run\nrun\nrun\n", buf.String())
}

func TestMark(t *testing.T) {
	err := Mark(errors.New("bad flag"), ErrConfig)
	assert.Equal(t, ErrConfig, Class(err))
	// An existing class is kept.
	err = Mark(err, ErrCommand)
	assert.Equal(t, ErrConfig, Class(err))
	assert.Nil(t, Mark(nil, ErrParse))
	assert.Nil(t, Class(errors.New("plain")))
}
