// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the command that performs the copy step, and the flags
// shared by every command that needs a step definition.
package run

import (
	"context"
	"time"

	"github.com/matt-FFFFFF/copystep/internal/config"
	"github.com/matt-FFFFFF/copystep/internal/copystep"
	"github.com/matt-FFFFFF/copystep/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	sourceFlag                  = "source"
	targetNameFlag              = "target-name"
	workingDirectoryFlag        = "working-directory"
	configFlag                  = "config"
	configTimeoutFlag           = "config-timeout"
	configTimeoutSecondsDefault = 30
	envPrefix                   = "COPYSTEP_"
	cliExitStr                  = ""
)

// RunCmd copies the source archive to the target name. The root command runs
// the same action when no subcommand is given. RunCmd declares no flags of its own:
// it reads the step flags from the root command, which carries NewFlags.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "Copy the source archive next to itself under the target name",
	Description: `Run resolves the source archive to its absolute path, following every symbolic link,
and copies it to the target name in the same directory. An existing file at the destination
is overwritten and receives the source's permission bits.

Config file URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.`,
	Action: Action,
}

// NewFlags returns the flags that describe a copy step. They belong on the root command
// only; subcommands see them as persistent flags, so they may be given before or after
// the subcommand name.
func NewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        sourceFlag,
			Aliases:     []string{"s"},
			Usage:       "Path of the archive to copy, relative to the working directory",
			DefaultText: copystep.DefaultSource,
			Sources:     cli.EnvVars(envPrefix + "SOURCE"),
			TakesFile:   true,
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:        targetNameFlag,
			Aliases:     []string{"t"},
			Usage:       "File name of the copy, created in the directory of the resolved source",
			DefaultText: copystep.DefaultTargetName,
			Sources:     cli.EnvVars(envPrefix + "TARGET_NAME"),
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:        workingDirectoryFlag,
			Aliases:     []string{"C"},
			Usage:       "Directory a relative source is resolved against",
			DefaultText: "current directory",
			Sources:     cli.EnvVars(envPrefix + "WORKING_DIRECTORY"),
			TakesFile:   true,
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage: "URL of a YAML, HCL or JSON file describing the step. " +
				"Supports Hashicorp's go-getter syntax. Flags and environment variables take precedence.",
			Sources:   cli.EnvVars(envPrefix + "CONFIG"),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:    configTimeoutFlag,
			Aliases: []string{"timeout"},
			Usage:   "Set the maximum time in seconds to wait for the config file to be fetched.",
			Value:   configTimeoutSecondsDefault,
		},
	}
}

// Definition builds the step definition for cmd: the defaults, overlaid by the config
// file, overlaid by flags and their environment variables.
func Definition(ctx context.Context, cmd *cli.Command) (*config.Definition, error) {
	def := config.Default()

	if url := cmd.String(configFlag); url != "" {
		configCtx, configCancel := context.WithTimeout(ctx, time.Duration(cmd.Int(configTimeoutFlag))*time.Second)
		defer configCancel()

		fromFile, err := config.Load(configCtx, url)
		if err != nil {
			return nil, err
		}

		def.Merge(fromFile)
	}

	def.Merge(&config.Definition{
		Source:           cmd.String(sourceFlag),
		TargetName:       cmd.String(targetNameFlag),
		WorkingDirectory: cmd.String(workingDirectoryFlag),
	})

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return def, nil
}

// Action performs the copy step described by the flags of cmd.
func Action(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running copy step")

	def, err := Definition(ctx, cmd)
	if err != nil {
		logger.Error("invalid copy step", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	res, err := def.Step().Run(ctx)
	if err != nil {
		logger.Error("copy step failed", "source", def.Source, "target", def.TargetName, "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	logger.Debug("copy step complete", "destination", res.Destination, "bytes", res.Bytes)

	return nil
}
