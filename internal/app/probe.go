package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/five82/clusterboard/internal/api"
)

// HealthChecker is the part of the API client the startup probe needs.
type HealthChecker interface {
	Health(ctx context.Context) (*api.Health, error)
}

// ProbeOptions tune the retry loop. Zero values select the defaults.
type ProbeOptions struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// Probe calls /health with retries. Client errors (4xx) are not retried since
// another attempt cannot change the answer.
func Probe(ctx context.Context, checker HealthChecker, logger *slog.Logger, opts ProbeOptions) (*api.Health, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = 500 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 5 * time.Second
	}

	var health *api.Health
	err := retry.Do(
		func() error {
			h, err := checker.Health(ctx)
			if err != nil {
				return err
			}
			health = h
			return nil
		},
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.Delay),
		retry.MaxDelay(opts.MaxDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Info("retrying health probe", "attempt", n+1, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			var se *api.StatusError
			if errors.As(err, &se) {
				return se.Code >= 500
			}
			return true
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("health probe: %w", err)
	}
	return health, nil
}
