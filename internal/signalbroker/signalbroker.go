// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker relays termination signals to the running step.
// Without arguments a Broker listens for interrupt, SIGTERM, SIGQUIT and SIGHUP.
//
// Watch turns the second signal of the same type into a context cancellation,
// so a first Ctrl-C lets an in-flight copy finish and a second one aborts it.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/copystep/internal/ctxlog"
)

// defaultSignals end a build step when the pipeline is stopped or the terminal goes away.
var defaultSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// Broker delivers the signals it was created for on C until Stop is called.
type Broker struct {
	C       chan os.Signal
	signals []os.Signal
}

// New starts relaying sigs, or defaultSignals when none are given.
func New(ctx context.Context, sigs ...os.Signal) *Broker {
	if len(sigs) == 0 {
		sigs = defaultSignals
	}

	b := &Broker{
		C:       make(chan os.Signal, 1),
		signals: sigs,
	}

	ctxlog.Debug(ctx, "relaying signals", "signals", sigs)
	signal.Notify(b.C, sigs...)

	return b
}

// Signals returns the signals relayed to C.
func (b *Broker) Signals() []os.Signal {
	return b.signals
}

// Stop ends delivery to C. C is left open; Watch returns when its context is done.
func (b *Broker) Stop() {
	signal.Stop(b.C)
}
