// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package copystep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/copystep/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	// DefaultSource is the archive produced by the mini_chromium base target,
	// relative to the build output directory.
	DefaultSource = "obj/third_party/mini_chromium/mini_chromium/base/libbase.a"
	// DefaultTargetName is the file name the archive is copied to, next to the source.
	DefaultTargetName = "libchromebase.a"
)

var (
	// ErrResolveSource is returned when the source path cannot be made absolute or resolved.
	ErrResolveSource = errors.New("cannot resolve source path")
	// ErrSourceIsDir is returned when the source resolves to a directory.
	ErrSourceIsDir = errors.New("source is a directory")
	// ErrInvalidTargetName is returned when the target name is not a bare file name.
	ErrInvalidTargetName = errors.New("target name must be a file name without directory components")
	// ErrSameFile is returned when the destination is the source file itself.
	ErrSameFile = errors.New("source and destination are the same file")
	// ErrDestinationIsDir is returned when a directory exists at the destination path.
	ErrDestinationIsDir = errors.New("destination is a directory")
	// ErrOpenSource is returned when the source cannot be opened for reading.
	ErrOpenSource = errors.New("cannot open source")
	// ErrCreateDestination is returned when the destination cannot be created or truncated.
	ErrCreateDestination = errors.New("cannot create destination")
	// ErrCopy is returned when copying the bytes fails part way.
	ErrCopy = errors.New("file copy error")
	// ErrChmod is returned when the source permissions cannot be applied to the destination.
	ErrChmod = errors.New("cannot apply source permissions to destination")
)

// FsFactory returns the filesystem used by New. Tests replace it with an in-memory filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Getwd returns the directory relative sources are resolved against when
// Step.WorkingDirectory is empty.
var Getwd = os.Getwd

// Step copies Source to TargetName in the directory of the resolved Source.
type Step struct {
	// Source is the archive to copy. Relative paths are joined to WorkingDirectory.
	Source string
	// TargetName is the destination file name.
	TargetName string
	// WorkingDirectory anchors a relative Source. Empty means the process working directory.
	WorkingDirectory string

	fs afero.Fs
}

// Plan is where a Step reads from and writes to.
type Plan struct {
	// Source is absolute with all symbolic links resolved.
	Source string `yaml:"source"`
	// Destination is TargetName in the directory of Source.
	Destination string `yaml:"destination"`
}

// Result describes a completed copy.
type Result struct {
	Plan

	// Bytes is the number of bytes written to the destination.
	Bytes int64
	// Mode holds the permission bits applied to the destination.
	Mode fs.FileMode
}

// New returns a Step on the filesystem from FsFactory.
func New(source, targetName string) *Step {
	return NewWithFs(FsFactory(), source, targetName)
}

// NewWithFs returns a Step that operates on fsys.
func NewWithFs(fsys afero.Fs, source, targetName string) *Step {
	return &Step{
		Source:     source,
		TargetName: targetName,
		fs:         fsys,
	}
}

// Fs returns the filesystem the step operates on.
func (s *Step) Fs() afero.Fs {
	if s.fs == nil {
		s.fs = FsFactory()
	}

	return s.fs
}

// ValidateTargetName reports whether name can be used as a destination file name.
func ValidateTargetName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidTargetName, name)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("%w: %q", ErrInvalidTargetName, name)
	case filepath.VolumeName(name) != "":
		return fmt.Errorf("%w: %q", ErrInvalidTargetName, name)
	}

	return nil
}

// Plan resolves the source and derives the destination without writing anything.
// A source that resolves to a directory is rejected here, so a plan always names a file.
func (s *Step) Plan(ctx context.Context) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}

	if err := ValidateTargetName(s.TargetName); err != nil {
		return Plan{}, err
	}

	abs, err := s.absSource()
	if err != nil {
		return Plan{}, errors.Join(ErrResolveSource, err)
	}

	resolved, info, err := realPath(s.Fs(), abs)
	if err != nil {
		return Plan{}, errors.Join(ErrResolveSource, err)
	}

	if info.IsDir() {
		return Plan{}, fmt.Errorf("%w: %s", ErrSourceIsDir, resolved)
	}

	p := Plan{
		Source:      resolved,
		Destination: filepath.Join(filepath.Dir(resolved), s.TargetName),
	}

	ctxlog.Debug(ctx, "resolved copy plan", "source", s.Source, "realSource", p.Source, "destination", p.Destination)

	return p, nil
}

// Run copies the source to the destination, replacing any existing file,
// then applies the source's permission bits to the destination.
// Nothing is written when the source cannot be resolved or opened.
func (s *Step) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.Logger(ctx).With("step", "copy")

	p, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}

	fsys := s.Fs()

	srcInfo, err := fsys.Stat(p.Source)
	if err != nil {
		return nil, errors.Join(ErrOpenSource, err)
	}

	if err := s.checkDestination(p, srcInfo); err != nil {
		return nil, err
	}

	src, err := fsys.Open(p.Source)
	if err != nil {
		return nil, errors.Join(ErrOpenSource, err)
	}
	defer src.Close() //nolint:errcheck

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := srcInfo.Mode().Perm()

	dst, err := fsys.OpenFile(p.Destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, errors.Join(ErrCreateDestination, err)
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		dst.Close() //nolint:errcheck
		return nil, errors.Join(ErrCopy, err)
	}

	if err := dst.Close(); err != nil {
		return nil, errors.Join(ErrCopy, err)
	}

	// OpenFile only applies mode to new files and is subject to the umask.
	if err := fsys.Chmod(p.Destination, mode); err != nil {
		return nil, errors.Join(ErrChmod, err)
	}

	logger.Info("copied archive", "source", p.Source, "destination", p.Destination, "bytes", n, "mode", mode.String())

	return &Result{Plan: p, Bytes: n, Mode: mode}, nil
}

func (s *Step) absSource() (string, error) {
	if filepath.IsAbs(s.Source) {
		return s.Source, nil
	}

	if s.Source == "" {
		return "", fs.ErrInvalid
	}

	wd := s.WorkingDirectory
	if wd == "" {
		var err error
		if wd, err = Getwd(); err != nil {
			return "", err
		}
	}

	if !filepath.IsAbs(wd) {
		cwd, err := Getwd()
		if err != nil {
			return "", err
		}

		wd = cwd + string(filepath.Separator) + wd
	}

	// Not filepath.Join: that would clean "link/.." lexically before links are resolved.
	return wd + string(filepath.Separator) + s.Source, nil
}

func (s *Step) checkDestination(p Plan, srcInfo fs.FileInfo) error {
	if p.Destination == p.Source {
		return fmt.Errorf("%w: %s", ErrSameFile, p.Source)
	}

	dstInfo, err := s.Fs().Stat(p.Destination)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return errors.Join(ErrCreateDestination, err)
	}

	if dstInfo.IsDir() {
		return fmt.Errorf("%w: %s", ErrDestinationIsDir, p.Destination)
	}

	if os.SameFile(srcInfo, dstInfo) {
		return fmt.Errorf("%w: %s and %s", ErrSameFile, p.Source, p.Destination)
	}

	return nil
}
