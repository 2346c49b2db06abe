// Package shutdown turns termination signals into context cancellation.
package shutdown

import (
	"context"
	"os"
	"os/signal"
)

func Notify(ch chan os.Signal) {
	signal.Notify(ch, signals...)
}

// Context is cancelled on the first termination signal. The stop func
// restores default signal handling.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}
