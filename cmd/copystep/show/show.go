// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"context"
	"errors"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/copystep/cmd/copystep/run"
	"github.com/matt-FFFFFF/copystep/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

var (
	// ErrEncodePlan is returned when the plan cannot be encoded as YAML.
	ErrEncodePlan = errors.New("failed to encode plan")
	// ErrWritePlan is returned when the plan cannot be written to the output.
	ErrWritePlan = errors.New("failed to write plan")
)

// ShowCmd resolves the copy step and prints where it would read and write, without copying.
var ShowCmd = &cli.Command{
	Name:        "show",
	Usage:       "Print the resolved source and destination as YAML",
	Description: "Show resolves the source archive exactly as run would and prints the plan. Nothing is written.",
	Action:      actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	def, err := run.Definition(ctx, cmd)
	if err != nil {
		logger.Error("invalid copy step", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	plan, err := def.Step().Plan(ctx)
	if err != nil {
		logger.Error("cannot resolve copy step", "source", def.Source, "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	b, err := yaml.Marshal(plan)
	if err != nil {
		logger.Error("cannot show plan", "error", errors.Join(ErrEncodePlan, err))
		return cli.Exit(cliExitStr, 1)
	}

	if _, err := cmd.Root().Writer.Write(b); err != nil {
		logger.Error("cannot show plan", "error", errors.Join(ErrWritePlan, err))
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
