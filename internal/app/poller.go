package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/clusterboard/internal/notify"
	"github.com/five82/clusterboard/internal/state"
	"github.com/five82/clusterboard/internal/submit"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// Notifier receives poller status toasts.
type Notifier interface {
	Enqueue(text string, sev notify.Severity) notify.Toast
}

// MsgReconnected is shown once the backend answers again after failures.
const MsgReconnected = "Reconnected to backend"

// StartPoller launches a background goroutine that refreshes the store until
// ctx is cancelled. Consecutive failures stretch the wait up to maxBackoff.
// It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, notifier Notifier, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			failures := poll(ctx, store, notifier, logger)
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// poll runs one refresh and reports the failure streak afterwards. Toasts are
// only raised when the streak starts or ends.
func poll(ctx context.Context, store *state.Store, notifier Notifier, logger *slog.Logger) int {
	before := store.Current().ConsecutiveFailures
	err := store.Refresh(ctx)
	after := store.Current().ConsecutiveFailures

	if err != nil {
		if ctx.Err() != nil {
			return after
		}
		logger.Warn("cluster poll failed", "error", err, "consecutive_failures", after)
		if before == 0 && notifier != nil {
			notifier.Enqueue(submit.MsgLoadError, notify.SeverityError)
		}
		return after
	}
	if before > 0 {
		logger.Info("cluster poll recovered", "after_failures", before)
		if notifier != nil {
			notifier.Enqueue(MsgReconnected, notify.SeverityInfo)
		}
	}
	return 0
}

// calculateBackoff doubles base per failure, capped at maxBackoff. A base
// above the cap is returned unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
