package exit

import (
	"context"
	"errors"
	"os"
	"os/signal"
)

// Interruptible runs a monitored loop whose context is canceled when one of
// signals arrives (os.Interrupt when none are given). An interruption makes
// Interruptible return nil instead of propagating the cancellation, so the
// caller continues to its normal exit path. Shutdown hooks registered before
// the interruption are left in place.
func Interruptible(ctx context.Context, fn func(context.Context) error, signals ...os.Signal) error {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt}
	}
	sigCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	err := fn(sigCtx)
	if interrupted(ctx, sigCtx) {
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
	}
	return err
}

// interrupted reports whether sigCtx was canceled by a signal rather than by
// its parent.
func interrupted(parent, sigCtx context.Context) bool {
	return sigCtx.Err() != nil && parent.Err() == nil
}
