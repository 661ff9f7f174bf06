// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/matt-FFFFFF/copystep/internal/copystep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	want := &Definition{
		Source:           "obj/base/libbase.a",
		TargetName:       "libchromebase.a",
		WorkingDirectory: "out/Release",
	}

	testCases := []struct {
		name     string
		filename string
		content  string
		want     *Definition
		wantErr  error
	}{
		{
			name:     "yaml",
			filename: "step.yaml",
			content: `
source: obj/base/libbase.a
target_name: libchromebase.a
working_directory: out/Release
`,
			want: want,
		},
		{
			name:     "yml upper case extension",
			filename: "STEP.YML",
			content:  "source: obj/base/libbase.a\ntarget_name: libchromebase.a\nworking_directory: out/Release\n",
			want:     want,
		},
		{
			name:     "hcl",
			filename: "step.hcl",
			content: `
source            = "obj/base/libbase.a"
target_name       = "libchromebase.a"
working_directory = "out/Release"
`,
			want: want,
		},
		{
			name:     "json",
			filename: "step.json",
			content:  `{"source": "obj/base/libbase.a", "target_name": "libchromebase.a", "working_directory": "out/Release"}`,
			want:     want,
		},
		{
			name:     "partial yaml leaves other fields empty",
			filename: "step.yaml",
			content:  "target_name: other.a\n",
			want:     &Definition{TargetName: "other.a"},
		},
		{
			name:     "unknown yaml field",
			filename: "step.yaml",
			content:  "source: a\ndestination: b\n",
			wantErr:  ErrDecodeConfig,
		},
		{
			name:     "unknown hcl attribute",
			filename: "step.hcl",
			content:  `destination = "b"`,
			wantErr:  ErrDecodeConfig,
		},
		{
			name:     "malformed hcl",
			filename: "step.hcl",
			content:  `source = `,
			wantErr:  ErrDecodeConfig,
		},
		{
			name:     "unsupported extension",
			filename: "step.toml",
			content:  `source = "a"`,
			wantErr:  ErrUnsupportedFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.filename, []byte(tc.content))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefault(t *testing.T) {
	def := Default()
	assert.Equal(t, copystep.DefaultSource, def.Source)
	assert.Equal(t, copystep.DefaultTargetName, def.TargetName)
	assert.Empty(t, def.WorkingDirectory)
	assert.NoError(t, def.Validate())
}

func TestMerge(t *testing.T) {
	def := Default()
	def.Merge(nil)
	assert.Equal(t, Default(), def)

	def.Merge(&Definition{TargetName: "renamed.a"})
	assert.Equal(t, copystep.DefaultSource, def.Source, "empty fields must not overwrite")
	assert.Equal(t, "renamed.a", def.TargetName)

	def.Merge(&Definition{Source: "lib.a", WorkingDirectory: "/out"})
	assert.Equal(t, &Definition{Source: "lib.a", TargetName: "renamed.a", WorkingDirectory: "/out"}, def)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	def := &Definition{Source: "  ", TargetName: "a/b"}

	err := def.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrEmptySource)
	assert.ErrorIs(t, err, copystep.ErrInvalidTargetName)
	assert.Contains(t, err.Error(), "2 errors occurred")
}

func TestStep(t *testing.T) {
	def := &Definition{Source: "lib.a", TargetName: "copy.a", WorkingDirectory: "/out"}

	s := def.Step()
	assert.Equal(t, "lib.a", s.Source)
	assert.Equal(t, "copy.a", s.TargetName)
	assert.Equal(t, "/out", s.WorkingDirectory)
}
