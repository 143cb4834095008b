// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fetch obtains benchmark archives and unpacks them.
package fetch

import (
	"archive/tar"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/gzip"

	"rsc.io/perfrun/internal/fsutil"
	"rsc.io/perfrun/internal/run"
)

// A Fetcher downloads or copies an archive and unpacks it.
type Fetcher struct {
	Offline  bool // skip downloads; the archive must already be present
	NoUnpack bool // skip download and unpack; the contents must already be present

	Client *http.Client // nil means http.DefaultClient
	FS     fsutil.FileSystem
	Log    hclog.Logger
}

// IsURL reports whether src names a remote archive.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch places the archive named by src at file and unpacks it into dir.
// Remote archives are downloaded unless f.Offline or f.NoUnpack is set;
// local archives are always copied unless they are already at file.
func (f *Fetcher) Fetch(src, file, dir string) error {
	if IsURL(src) {
		if !f.Offline && !f.NoUnpack {
			if err := f.download(src, file); err != nil {
				return err
			}
		}
	} else if fsutil.SameFile(f.FS, src, file) {
		f.Log.Info("archive already in place", "file", file)
	} else {
		f.Log.Info("copying archive", "from", src, "to", file)
		if err := fsutil.CopyFile(f.FS, src, file); err != nil {
			return errors.Wrapf(err, "copying archive")
		}
	}
	if f.NoUnpack {
		return nil
	}
	f.Log.Info("unpacking", "archive", file, "dir", dir)
	r, err := f.FS.Open(file)
	if err != nil {
		return errors.Wrapf(err, "opening archive")
	}
	defer r.Close()
	return errors.Wrapf(Unpack(f.FS, r, dir), "unpacking %s", file)
}

func (f *Fetcher) download(url, file string) (err error) {
	f.Log.Info("downloading", "from", url, "to", file)
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "downloading %s", url), run.ErrCommand)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Mark(errors.Newf("downloading %s: %s", url, resp.Status), run.ErrCommand)
	}
	w, err := f.FS.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "downloading %s", url), run.ErrCommand)
	}
	f.Log.Info("downloaded", "size", humanize.Bytes(uint64(n)))
	return nil
}

// Unpack extracts the gzip-compressed tar stream r into dir.
// Entries that would land outside dir are rejected.
func Unpack(fsys fsutil.FileSystem, r io.Reader, dir string) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name, err := within(dir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(name, 0777); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := fsys.MkdirAll(filepath.Dir(name), 0777); err != nil {
				return err
			}
			if err := writeFile(fsys, name, tr); err != nil {
				return err
			}
			// Benchmark binaries must stay executable.
			if hdr.FileInfo().Mode()&0111 != 0 {
				if err := fsys.Chmod(name, hdr.FileInfo().Mode().Perm()); err != nil {
					return err
				}
			}
		}
	}
}

func writeFile(fsys fsutil.FileSystem, name string, r io.Reader) (err error) {
	w, err := fsys.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(w, r)
	return err
}

func within(dir, name string) (string, error) {
	full := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf("archive entry %q escapes %s", name, dir)
	}
	return full, nil
}
