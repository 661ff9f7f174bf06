// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package copystep

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/afero"
)

var errInjected = errors.New("injected fault")

// faultyFs fails the named operation on path and defers everything else to Fs.
type faultyFs struct {
	afero.Fs
	op   string
	path string
	err  error
}

func (f *faultyFs) fault(op, name string) error {
	if op != f.op || name != f.path {
		return nil
	}

	if f.err != nil {
		return &os.PathError{Op: op, Path: name, Err: f.err}
	}

	return &os.PathError{Op: op, Path: name, Err: errInjected}
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	if err := f.fault("open", name); err != nil {
		return nil, err
	}

	return f.Fs.Open(name)
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := f.fault("openfile", name); err != nil {
		return nil, err
	}

	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	if f.op == "write" && name == f.path {
		return &failingWriteFile{File: file}, nil
	}

	return file, nil
}

func (f *faultyFs) Stat(name string) (os.FileInfo, error) {
	if err := f.fault("stat", name); err != nil {
		return nil, err
	}

	return f.Fs.Stat(name)
}

func (f *faultyFs) Chmod(name string, mode os.FileMode) error {
	if err := f.fault("chmod", name); err != nil {
		return err
	}

	return f.Fs.Chmod(name, mode)
}

func (f *faultyFs) Name() string {
	return "faultyFs"
}

// failingWriteFile accepts the open but fails every write.
type failingWriteFile struct {
	afero.File
}

func (f *failingWriteFile) Write(_ []byte) (int, error) {
	return 0, errInjected
}

func (f *failingWriteFile) ReadFrom(_ io.Reader) (int64, error) {
	return 0, errInjected
}
