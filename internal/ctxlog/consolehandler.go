// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/copystep/internal/color"
)

var (
	// ErrMarshalAttribute is returned when an error occurs while marshaling an attribute.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when an error occurs while writing to the output.
	ErrIoWrite = errors.New("error when writing to output")
)

// TimeFormat is the format used for timestamps in log messages.
const TimeFormat = "[15:04:05.000]"

var _ slog.Handler = (*ConsoleHandler)(nil)

// boundAttr is an attribute added with WithAttrs, remembered with the groups open at the time.
type boundAttr struct {
	groups []string
	attr   slog.Attr
}

// ConsoleHandler writes one line per record:
//
//	[15:04:05.000] INFO: message {"key": "value"}
//
// Attributes, including those added with WithAttrs and nested under WithGroup,
// are rendered as indented JSON.
type ConsoleHandler struct {
	opts             slog.HandlerOptions
	bound            []boundAttr
	groups           []string
	writer           io.Writer
	mu               *sync.Mutex
	colour           bool
	autoColour       bool
	outputEmptyAttrs bool
}

// Option configures a ConsoleHandler.
type Option func(h *ConsoleHandler)

// WithDestinationWriter sets where the handler writes. Defaults to stderr.
func WithDestinationWriter(w io.Writer) Option {
	return func(h *ConsoleHandler) {
		h.writer = w
	}
}

// WithColour enables ANSI colour output.
func WithColour() Option {
	return func(h *ConsoleHandler) {
		h.colour = true
	}
}

// WithAutoColour enables colour when the destination writer is a terminal.
// The writer is checked once all options are applied, so option order does not matter.
func WithAutoColour() Option {
	return func(h *ConsoleHandler) {
		h.autoColour = true
	}
}

// WithOutputEmptyAttrs writes "{}" for records without attributes.
func WithOutputEmptyAttrs() Option {
	return func(h *ConsoleHandler) {
		h.outputEmptyAttrs = true
	}
}

// NewConsoleHandler creates a ConsoleHandler. A nil handlerOptions is treated as the zero value.
func NewConsoleHandler(handlerOptions *slog.HandlerOptions, options ...Option) *ConsoleHandler {
	h := &ConsoleHandler{
		writer: os.Stderr,
		mu:     &sync.Mutex{},
	}

	if handlerOptions != nil {
		h.opts = *handlerOptions
	}

	for _, opt := range options {
		opt(h)
	}

	if h.autoColour {
		h.colour = color.EnabledFor(h.writer)
	}

	return h
}

// Enabled reports whether level meets the configured minimum level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

// WithAttrs returns a handler that adds attrs to every record under the current groups.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := h.clone()
	for _, a := range attrs {
		h2.bound = append(h2.bound, boundAttr{groups: h.groups, attr: a})
	}

	return h2
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := h.clone()
	h2.groups = append(h2.groups[:len(h2.groups):len(h2.groups)], name)

	return h2
}

// Handle formats and writes r.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	out := strings.Builder{}

	if ts := h.builtin(slog.TimeKey, slog.StringValue(r.Time.Format(TimeFormat))); ts != "" && !r.Time.IsZero() {
		out.WriteString(h.paint(ts, color.FgWhite))
		out.WriteString(" ")
	}

	if lvl := h.builtin(slog.LevelKey, slog.AnyValue(r.Level)); lvl != "" {
		out.WriteString(h.paint(lvl+":", levelColour(r.Level)))
		out.WriteString(" ")
	}

	if msg := h.builtin(slog.MessageKey, slog.StringValue(r.Message)); msg != "" {
		out.WriteString(h.paint(msg, color.FgHiWhite))
		out.WriteString(" ")
	}

	attrs, err := h.collect(r)
	if err != nil {
		return err
	}

	if len(attrs) > 0 || h.outputEmptyAttrs {
		f := colorjson.NewFormatter()
		f.Indent = 2
		f.DisabledColor = !h.colour

		b, err := f.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}

		out.Write(b)
	}

	out.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.writer, out.String()); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	h2 := *h
	h2.bound = append([]boundAttr(nil), h.bound...)

	return &h2
}

func (h *ConsoleHandler) paint(s string, c color.Code) string {
	if !h.colour {
		return s
	}

	return color.Wrap(s, c)
}

// builtin applies ReplaceAttr to one of the time, level or message attributes.
// An empty return means the attribute was dropped.
func (h *ConsoleHandler) builtin(key string, v slog.Value) string {
	a := slog.Attr{Key: key, Value: v}
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return ""
	}

	return a.Value.String()
}

// collect builds the attribute tree for r and normalises it to JSON types,
// which is what colorjson knows how to print.
func (h *ConsoleHandler) collect(r slog.Record) (map[string]any, error) {
	tree := make(map[string]any)

	for _, b := range h.bound {
		h.insert(tree, b.groups, b.attr)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.insert(tree, h.groups, a)
		return true
	})

	if len(tree) == 0 {
		return tree, nil
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, errors.Join(ErrMarshalAttribute, err)
	}

	var normalised map[string]any
	if err := json.Unmarshal(raw, &normalised); err != nil {
		return nil, errors.Join(ErrMarshalAttribute, err)
	}

	return normalised, nil
}

func (h *ConsoleHandler) insert(tree map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup && h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	node := tree
	for _, g := range groups {
		node = subtree(node, g)
	}

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		if len(members) == 0 {
			return
		}

		sub := groups
		if a.Key != "" {
			sub = append(groups[:len(groups):len(groups)], a.Key)
		}

		for _, m := range members {
			h.insert(tree, sub, m)
		}

		return
	}

	node[a.Key] = plainValue(a.Value)
}

func subtree(node map[string]any, key string) map[string]any {
	if sub, ok := node[key].(map[string]any); ok {
		return sub
	}

	sub := make(map[string]any)
	node[key] = sub

	return sub
}

func plainValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		default:
			return x
		}
	default:
		return v.Any()
	}
}

func levelColour(l slog.Level) color.Code {
	switch {
	case l <= slog.LevelDebug:
		return color.FgWhite
	case l <= slog.LevelInfo:
		return color.FgCyan
	case l < slog.LevelWarn:
		return color.FgBlue
	case l < slog.LevelError:
		return color.FgYellow
	case l <= slog.LevelError+1:
		return color.FgRed
	default:
		return color.FgHiMagenta
	}
}
