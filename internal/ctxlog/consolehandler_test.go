// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, opts ...Option) *slog.Logger {
	opts = append([]Option{WithDestinationWriter(buf)}, opts...)

	return slog.New(NewConsoleHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, opts...))
}

// assertAttr checks that out contains the JSON member "key": value, whatever the spacing.
func assertAttr(t *testing.T, out, key, value string) {
	t.Helper()
	assert.Regexp(t, regexp.MustCompile(`"`+regexp.QuoteMeta(key)+`":\s*`+regexp.QuoteMeta(value)), out)
}

func TestConsoleHandler_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		options *slog.HandlerOptions
		level   slog.Level
		want    bool
	}{
		{name: "nil options default to info, debug disabled", options: nil, level: slog.LevelDebug, want: false},
		{name: "nil options default to info, info enabled", options: nil, level: slog.LevelInfo, want: true},
		{name: "debug handler enables debug", options: &slog.HandlerOptions{Level: slog.LevelDebug}, level: slog.LevelDebug, want: true},
		{name: "error handler disables warn", options: &slog.HandlerOptions{Level: slog.LevelError}, level: slog.LevelWarn, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewConsoleHandler(tt.options)
			assert.Equal(t, tt.want, h.Enabled(context.Background(), tt.level))
		})
	}
}

func TestConsoleHandler_Handle(t *testing.T) {
	var buf bytes.Buffer

	logger := newTestLogger(&buf)
	logger.Info("copied file", "bytes", 42, "destination", "/out/libchromebase.a")

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, "INFO: copied file")
	assertAttr(t, out, "bytes", `42`)
	assertAttr(t, out, "destination", `"/out/libchromebase.a"`)
	assert.NotContains(t, out, "\033[", "colour is off unless requested")
}

func TestConsoleHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer

	newTestLogger(&buf).Warn("bare")
	assert.NotContains(t, buf.String(), "{")

	buf.Reset()
	newTestLogger(&buf, WithOutputEmptyAttrs()).Warn("bare")
	assert.Contains(t, buf.String(), "{")
}

func TestConsoleHandler_GroupsAndBoundAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := newTestLogger(&buf).
		With("step", "copy").
		WithGroup("plan").
		With("source", "/a/libbase.a")

	logger.Debug("resolved", "destination", "/a/libchromebase.a", slog.Group("file", "mode", "0644"))

	out := buf.String()
	assertAttr(t, out, "step", `"copy"`)
	assertAttr(t, out, "plan", `{`)
	assertAttr(t, out, "source", `"/a/libbase.a"`)
	assertAttr(t, out, "destination", `"/a/libchromebase.a"`)
	assertAttr(t, out, "file", `{`)
	assertAttr(t, out, "mode", `"0644"`)
}

func TestConsoleHandler_ValueKinds(t *testing.T) {
	var buf bytes.Buffer

	newTestLogger(&buf).Error("failed",
		"error", errors.New("boom"),
		"elapsed", 1500*time.Millisecond,
		"ok", false,
	)

	out := buf.String()
	assertAttr(t, out, "error", `"boom"`)
	assertAttr(t, out, "elapsed", `"1.5s"`)
	assertAttr(t, out, "ok", `false`)
}

func TestConsoleHandler_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	h := NewConsoleHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey, "secret":
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	slog.New(h).Info("hello", "secret", "hunter2", "visible", "yes")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO: hello"), "time should be dropped, got %q", out)
	assert.NotContains(t, out, "hunter2")
	assertAttr(t, out, "visible", `"yes"`)
}

func TestConsoleHandler_Colour(t *testing.T) {
	var buf bytes.Buffer

	h := NewConsoleHandler(nil, WithDestinationWriter(&buf), WithColour())
	require.True(t, h.colour)

	slog.New(h).Info("coloured")
	assert.Contains(t, buf.String(), "\033[36mINFO:\033[0m")
	assert.Contains(t, buf.String(), "\033[97mcoloured\033[0m")
}

func TestConsoleHandler_AutoColourFollowsWriter(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")

	var buf bytes.Buffer

	h := NewConsoleHandler(nil, WithAutoColour(), WithDestinationWriter(&buf))
	assert.False(t, h.colour, "a buffer is not a terminal")

	slog.New(h).Info("plain")
	assert.NotContains(t, buf.String(), "\033[")

	t.Setenv("FORCE_COLOR", "1")

	h = NewConsoleHandler(nil, WithAutoColour(), WithDestinationWriter(&buf))
	assert.True(t, h.colour, "FORCE_COLOR enables colour for the configured writer")
}

type failingWriter struct{}

func (failingWriter) Write(_ []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestConsoleHandler_WriteError(t *testing.T) {
	h := NewConsoleHandler(nil, WithDestinationWriter(failingWriter{}))
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)

	err := h.Handle(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIoWrite)
}

func TestConsoleHandler_MarshalError(t *testing.T) {
	h := NewConsoleHandler(nil, WithDestinationWriter(&bytes.Buffer{}))
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(slog.Any("fn", func() {}))

	err := h.Handle(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarshalAttribute)
}

func TestConsoleHandler_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer

	logger := newTestLogger(&buf)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("line", "i", i)
		}()
	}

	wg.Wait()
	assert.Equal(t, 20, strings.Count(buf.String(), "INFO: line"))
}
