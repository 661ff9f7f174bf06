// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger on a context.Context.
//
// The default logger writes to stderr through ConsoleHandler, a human-readable
// handler that renders attributes as indented JSON. The minimum level comes
// from the <EXECUTABLE>_LOG_LEVEL environment variable, e.g. COPYSTEP_LOG_LEVEL
// for the copystep binary, and defaults to WARN.
package ctxlog
