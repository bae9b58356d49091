package notifications

import (
	"context"
	"errors"
	"time"
)

// Run executes a cycle, waits interval, and repeats until ctx is cancelled.
// Cycle errors are logged and never stop the loop. Cycles never overlap: the
// wait starts only after the previous cycle has finished.
func (n *Notifier) Run(ctx context.Context, interval time.Duration) {
	n.logger.Info("Notification loop started", "interval", interval, "policy", n.policy)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			n.runLogged(ctx)
			timer.Reset(interval)
		case <-ctx.Done():
			n.logger.Info("Notification loop stopped")
			return
		}
	}
}

func (n *Notifier) runLogged(ctx context.Context) {
	start := time.Now()
	result, err := n.RunCycle(ctx)
	dur := time.Since(start).Round(time.Millisecond)

	var fetchErr *FetchError
	var dispatchErr *DispatchError
	switch {
	case errors.As(err, &fetchErr):
		n.logger.Error("Cycle aborted: fetch failed", "duration", dur, "error", fetchErr.Err)
	case errors.As(err, &dispatchErr):
		n.logger.Error("Cycle finished with dispatch errors",
			"duration", dur, "summary", result.Summary(), "error", dispatchErr)
	case err != nil:
		n.logger.Error("Cycle failed", "duration", dur, "error", err)
	case result.Sent+result.Purged > 0:
		n.logger.Info("Cycle complete", "duration", dur, "summary", result.Summary())
	default:
		n.logger.Debug("Cycle complete", "duration", dur, "summary", result.Summary())
	}
}
