// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/copystep/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrGetConfigFile is returned when the config file cannot be fetched.
var ErrGetConfigFile = errors.New("failed to get config file")

// FsFactory returns the filesystem local config paths are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// Load fetches the config at url and decodes it.
// Plain local paths are read directly; anything else goes through go-getter.
func Load(ctx context.Context, url string) (*Definition, error) {
	if url == "" {
		return nil, ErrGetConfigFile
	}

	name, data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "loaded config file", "url", url, "bytes", len(data))

	return Decode(name, data)
}

func fetch(ctx context.Context, url string) (string, []byte, error) {
	fsys := FsFactory()

	if ok, _ := afero.Exists(fsys, url); ok {
		data, err := afero.ReadFile(fsys, url)
		if err != nil {
			return "", nil, errors.Join(ErrGetConfigFile, err)
		}

		return url, data, nil
	}

	if isLocalPath(url) {
		return "", nil, errors.Join(ErrGetConfigFile, &fs.PathError{Op: "open", Path: url, Err: fs.ErrNotExist})
	}

	return getURL(ctx, url)
}

// isLocalPath reports whether url has neither a forced getter ("git::") nor a scheme.
func isLocalPath(url string) bool {
	return !strings.Contains(url, "::") && !strings.Contains(url, "://")
}

// getURL downloads the directory holding the config file named by url into a
// temporary directory and returns the file name and contents.
func getURL(ctx context.Context, url string) (string, []byte, error) {
	tmpDir, err := os.MkdirTemp("", "copystep-getter-*")
	if err != nil {
		return "", nil, errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return "", nil, errors.Join(ErrGetConfigFile, err)
	}

	req, fileName, err := getterRequest(url, filepath.Join(tmpDir, "g"), wd)
	if err != nil {
		return "", nil, err
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return "", nil, errors.Join(ErrGetConfigFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return "", nil, errors.Join(ErrGetConfigFile, err)
	}

	return fileName, data, nil
}

// getterRequest builds a directory fetch for url and returns the name of the
// config file inside that directory. go-getter only fetches directories for
// most sources (https://github.com/hashicorp/go-getter/issues/98), so remote
// URLs must name the file after the last "//", as in
// "git::https://example.com/repo//step.yaml".
func getterRequest(url, dst, pwd string) (*getter.Request, string, error) {
	req := &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     pwd,
		GetMode: getter.ModeDir,
	}

	local, err := getter.Detect(req, &getter.FileGetter{})
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	if local {
		req.Src = filepath.Dir(url)
		return req, filepath.Base(url), nil
	}

	dirURL, fileName := splitFileNameFromGetterURL(url)
	if dirURL == "" || fileName == "" {
		return nil, "", fmt.Errorf("%w: invalid URL format, want <source>//<file>: %s", ErrGetConfigFile, url)
	}

	req.Src = dirURL

	return req, fileName, nil
}

// splitFileNameFromGetterURL splits a go-getter URL into the directory URL and the file name.
// A ref query parameter is kept on the returned URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	dir := filepath.Dir(last)

	if dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)
	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
