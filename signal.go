package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyShutdownContext is cancelled on Ctrl+C or SIGTERM.
func notifyShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
