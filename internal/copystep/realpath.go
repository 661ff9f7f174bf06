// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package copystep

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// maxSymlinks bounds link expansion while resolving a path.
const maxSymlinks = 255

// ErrTooManyLinks is returned when resolving a path expands more than maxSymlinks links.
var ErrTooManyLinks = errors.New("too many levels of symbolic links")

// realPath returns the physical location of the absolute path p and what is there.
// Filesystems that cannot report links only get a lexical clean and an existence check.
func realPath(fsys afero.Fs, p string) (string, fs.FileInfo, error) {
	resolved := filepath.Clean(p)

	if sl, ok := fsys.(afero.Symlinker); ok {
		var err error
		if resolved, err = evalSymlinks(sl, p); err != nil {
			return "", nil, err
		}
	}

	info, err := fsys.Stat(resolved)
	if err != nil {
		return "", nil, err
	}

	return resolved, info, nil
}

// evalSymlinks walks p one component at a time. ".." is applied to the
// already-resolved prefix, so "link/.." means the parent of the link target.
func evalSymlinks(fsys afero.Symlinker, p string) (string, error) {
	const sep = string(filepath.Separator)

	vol := filepath.VolumeName(p)
	rest := p[len(vol):]
	resolved := vol + sep
	links := 0

	for rest != "" {
		rest = strings.TrimLeft(rest, sep)
		if rest == "" {
			break
		}

		var name string
		if i := strings.Index(rest, sep); i < 0 {
			name, rest = rest, ""
		} else {
			name, rest = rest[:i], rest[i:]
		}

		switch name {
		case ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		candidate := filepath.Join(resolved, name)

		fi, _, err := fsys.LstatIfPossible(candidate)
		if err != nil {
			return "", err
		}

		if fi.Mode()&os.ModeSymlink == 0 {
			resolved = candidate
			continue
		}

		links++
		if links > maxSymlinks {
			return "", &os.PathError{Op: "realpath", Path: p, Err: ErrTooManyLinks}
		}

		target, err := fsys.ReadlinkIfPossible(candidate)
		if err != nil {
			return "", err
		}

		if filepath.IsAbs(target) {
			tvol := filepath.VolumeName(target)
			resolved = tvol + sep
			target = target[len(tvol):]
		}

		rest = target + rest
	}

	return filepath.Clean(resolved), nil
}
