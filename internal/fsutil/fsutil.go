// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsutil provides the file operations the benchmark tools need,
// behind an interface that tests can replace.
package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// A FileSystem is the subset of file operations used by the tools.
type FileSystem interface {
	Chmod(name string, mode fs.FileMode) error
	Create(name string) (io.WriteCloser, error)
	Open(name string) (io.ReadCloser, error)
	OpenAppend(name string) (io.WriteCloser, error)
	MkdirAll(name string, mode fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
	Rename(oldname, newname string) error
	Stat(name string) (fs.FileInfo, error)
	WriteFile(name string, data []byte, mode fs.FileMode) error
}

// A Local is the FileSystem of the local machine.
type Local struct{}

func (*Local) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode)
}

func (*Local) Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*Local) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*Local) OpenAppend(name string) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*Local) MkdirAll(name string, mode fs.FileMode) error {
	return os.MkdirAll(name, mode)
}

func (*Local) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (*Local) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (*Local) Remove(name string) error {
	return os.Remove(name)
}

func (*Local) Rename(oldname, newname string) error {
	return os.Rename(oldname, newname)
}

func (*Local) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (*Local) WriteFile(name string, data []byte, mode fs.FileMode) error {
	return os.WriteFile(name, data, mode)
}

// IsDir reports whether name exists and is a directory.
func IsDir(fsys FileSystem, name string) bool {
	fi, err := fsys.Stat(name)
	return err == nil && fi.IsDir()
}

// IsFile reports whether name exists and is a regular file.
func IsFile(fsys FileSystem, name string) bool {
	fi, err := fsys.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}

// SameFile reports whether a and b name the same existing file.
func SameFile(fsys FileSystem, a, b string) bool {
	fa, err := fsys.Stat(a)
	if err != nil {
		return false
	}
	fb, err := fsys.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// CopyFile copies src to dst, replacing dst if it exists.
// dst gets the permission bits of src.
func CopyFile(fsys FileSystem, src, dst string) error {
	fi, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if err := copyData(fsys, src, dst); err != nil {
		return err
	}
	return errors.Wrapf(fsys.Chmod(dst, fi.Mode().Perm()), "copy %s to %s", src, dst)
}

func copyData(fsys FileSystem, src, dst string) (err error) {
	r, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := fsys.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(w, r)
	return errors.Wrapf(err, "copy %s to %s", src, dst)
}

// MoveFile moves src to dst, replacing dst if it exists.
func MoveFile(fsys FileSystem, src, dst string) error {
	if IsFile(fsys, dst) {
		if err := fsys.Remove(dst); err != nil {
			return err
		}
	}
	return fsys.Rename(src, dst)
}

// PatchDir copies every regular file in src into dst,
// overwriting files of the same name. Subdirectories of src are ignored.
// It returns the names of the files copied.
//
// PatchDir is not transactional: if it fails partway,
// dst holds a mix of old and new files.
func PatchDir(fsys FileSystem, src, dst string) ([]string, error) {
	entries, err := fsys.ReadDir(src)
	if err != nil {
		return nil, errors.Wrapf(err, "reading runtime files")
	}
	var copied []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := CopyFile(fsys, filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return copied, errors.Wrapf(err, "patching %s", dst)
		}
		copied = append(copied, e.Name())
	}
	return copied, nil
}
