// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the copystep command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/copystep"
	"github.com/matt-FFFFFF/copystep/cmd/copystep/run"
	"github.com/matt-FFFFFF/copystep/cmd/copystep/show"
	"github.com/matt-FFFFFF/copystep/internal/ctxlog"
	"github.com/matt-FFFFFF/copystep/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd runs the copy step when no subcommand is given.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Flags:     run.NewFlags(),
	Action:    run.Action,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "copystep",
	Description: `Copystep is a build step that copies the mini_chromium base archive,
obj/third_party/mini_chromium/mini_chromium/base/libbase.a, to libchromebase.a
in the same directory. The source is resolved to its real path first, so the copy
lands next to the archive even when the output directory is reached through a symbolic link.`,
	Usage:     "copystep [--working-directory out/Release]",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	broker := signalbroker.New(ctx)
	defer broker.Stop()

	go signalbroker.Watch(ctx, broker.C, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", copystep.Version, copystep.Commit)

	err := rootCmd.Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
