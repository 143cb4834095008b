// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gitsrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/run"
)

func newClient(f *run.Fake) *Client {
	return &Client{Exec: f, FS: new(fsutil.Local), Log: hclog.NewNullLogger()}
}

func TestSyncClone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "coreclr")
	f := new(run.Fake)
	f.OnFunc("git clone", func(*run.Cmd) (string, error) {
		return "", os.Mkdir(dir, 0777)
	})
	f.On("git rev-parse HEAD", "0123456789abcdef0123\n", nil)

	c := newClient(f)
	head, err := c.Sync(Repo{URL: "https://github.com/dotnet/coreclr", Branch: "master", Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "0123456789a", head)
	assert.Equal(t, []string{
		"git clone -b master https://github.com/dotnet/coreclr " + dir,
		"(cd " + dir + " && git rev-parse HEAD)",
	}, f.Lines())

	head, err = c.Head(dir)
	require.NoError(t, err)
	assert.Equal(t, "0123456789a", head)
}

func TestSyncPull(t *testing.T) {
	dir := t.TempDir()
	f := new(run.Fake)
	c := newClient(f)
	_, err := c.Sync(Repo{URL: "https://example.com/JitBench", Branch: "dev", Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "(cd "+dir+" && git pull)", f.Lines()[0])
}

func TestSyncFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "JitBench")
	f := new(run.Fake)
	f.On("git clone", "", errors.New("exit status 128"))
	_, err := newClient(f).Sync(Repo{URL: "https://example.com/JitBench", Dir: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrCommand))
	assert.Len(t, f.Cmds, 1)
}

func TestSyncMissingCheckout(t *testing.T) {
	// A clone that "succeeds" without creating the directory is still a failure.
	dir := filepath.Join(t.TempDir(), "JitBench")
	f := new(run.Fake)
	_, err := newClient(f).Sync(Repo{URL: "https://example.com/JitBench", Dir: dir})
	assert.True(t, errors.Is(err, run.ErrCommand))
}
