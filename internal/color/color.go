// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	escape = "\033["
	reset  = "\033[0m"
)

// Code is an SGR parameter, e.g. a foreground colour.
type Code int

// Foreground text colors used by the console log handler.
const (
	FgRed    Code = 31
	FgYellow Code = 33
	FgBlue   Code = 34
	FgCyan   Code = 36
	FgWhite  Code = 37

	FgHiMagenta Code = 95
	FgHiWhite   Code = 97
)

// Diagnostics go to stderr, so that is the stream whose terminal decides the default.
var enabled = detect(os.Stderr)

// Enabled reports whether Colorize emits escape codes.
func Enabled() bool {
	return enabled
}

// EnabledFor reports whether output written to w should be coloured.
// Writers that are not terminals, such as buffers and pipes, are not coloured
// unless FORCE_COLOR is set.
func EnabledFor(w io.Writer) bool {
	return detect(w)
}

// Colorize wraps str in the given codes followed by a reset.
// It returns str unchanged when colour is disabled or no codes are given.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	return Wrap(str, codes...)
}

// Wrap is Colorize without the Enabled check, for callers that decide per writer.
func Wrap(str string, codes ...Code) string {
	if len(codes) == 0 {
		return str
	}

	params := make([]string, len(codes))
	for i, c := range codes {
		params[i] = strconv.Itoa(int(c))
	}

	return escape + strings.Join(params, ";") + "m" + str + reset
}

type fder interface {
	Fd() uintptr
}

func detect(w io.Writer) bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	f, ok := w.(fder)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
