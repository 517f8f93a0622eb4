/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package sigutil wires the two-tier graceful-then-forced shutdown
// signal handling shared by the CLI entrypoint.
package sigutil

import (
	"os"
	"os/signal"
	"syscall"
)

var terminationSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}

// WatchShutdown returns a channel that is closed the first time the
// process receives SIGTERM or SIGINT. If a second such signal arrives
// before the caller has torn everything down, the process exits
// immediately with status 1.
func WatchShutdown() <-chan struct{} {
	notifyCh := make(chan os.Signal, 2)
	stopCh := make(chan struct{})

	go func() {
		<-notifyCh
		close(stopCh)
		<-notifyCh
		os.Exit(1)
	}()

	signal.Notify(notifyCh, terminationSignals...)
	return stopCh
}
