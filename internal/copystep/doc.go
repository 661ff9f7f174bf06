// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package copystep copies a build archive to a sibling file with a fixed name.
//
// The source path is made absolute and every symbolic link in it is resolved,
// so the copy always lands next to the real file rather than next to a link.
// Contents and permission bits are copied; an existing destination is
// truncated and replaced.
//
//	res, err := copystep.New(copystep.DefaultSource, copystep.DefaultTargetName).Run(ctx)
package copystep
