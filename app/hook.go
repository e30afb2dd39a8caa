package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithShutdownSignals returns a context cancelled on SIGINT or SIGTERM.
func WithShutdownSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
