//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals registers the signals that abort a running simulation.
// On Windows, only os.Interrupt (Ctrl+C) is supported; SIGTERM does not exist.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
