// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config describes a copy step in a file.
//
// YAML (.yaml, .yml), HCL (.hcl) and JSON (.json) are accepted:
//
//	source: obj/third_party/mini_chromium/mini_chromium/base/libbase.a
//	target_name: libchromebase.a
//	working_directory: out/Release
//
// Files are fetched with go-getter, so a config may live in a git repository
// or behind a URL as well as on local disk.
package config
