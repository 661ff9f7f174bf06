// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/matt-FFFFFF/copystep/internal/copystep"
)

var (
	// ErrDecodeConfig is returned when a config file cannot be parsed.
	ErrDecodeConfig = errors.New("failed to decode config file")
	// ErrUnsupportedFormat is returned for config files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported config file format, want .yaml, .yml, .hcl or .json")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid copy step configuration")
	// ErrEmptySource is returned when no source path is configured.
	ErrEmptySource = errors.New("source must not be empty")
)

// Definition is the file representation of a copy step. Empty fields leave
// the current value alone when merged.
type Definition struct {
	Source           string `yaml:"source,omitempty" hcl:"source,optional"`
	TargetName       string `yaml:"target_name,omitempty" hcl:"target_name,optional"`
	WorkingDirectory string `yaml:"working_directory,omitempty" hcl:"working_directory,optional"`
}

// Default returns the built-in step: libbase.a copied to libchromebase.a in the current directory.
func Default() *Definition {
	return &Definition{
		Source:     copystep.DefaultSource,
		TargetName: copystep.DefaultTargetName,
	}
}

// Merge overwrites fields of d with the non-empty fields of other.
func (d *Definition) Merge(other *Definition) {
	if other == nil {
		return
	}

	if other.Source != "" {
		d.Source = other.Source
	}

	if other.TargetName != "" {
		d.TargetName = other.TargetName
	}

	if other.WorkingDirectory != "" {
		d.WorkingDirectory = other.WorkingDirectory
	}
}

// Validate reports every problem with d at once.
func (d *Definition) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(d.Source) == "" {
		result = multierror.Append(result, ErrEmptySource)
	}

	if err := copystep.ValidateTargetName(d.TargetName); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// Step builds the copy step described by d.
func (d *Definition) Step() *copystep.Step {
	s := copystep.New(d.Source, d.TargetName)
	s.WorkingDirectory = d.WorkingDirectory

	return s
}

// Decode parses data according to the extension of filename.
func Decode(filename string, data []byte) (*Definition, error) {
	def := new(Definition)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, def, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.Join(ErrDecodeConfig, err)
		}
	case ".hcl", ".json":
		// hclsimple picks native or JSON syntax from the name, which must be lower case.
		if err := hclsimple.Decode("config"+ext, data, nil, def); err != nil {
			return nil, errors.Join(ErrDecodeConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}

	return def, nil
}
