package http

import (
	"context"
	"sync/atomic"
	"time"
)

// inFlight counts requests currently being served, process-wide. Incremented
// by MetricsMiddleware and drained during graceful shutdown.
var inFlight atomic.Int64

// InFlightCount returns the current number of in-flight requests.
func InFlightCount() int64 {
	return inFlight.Load()
}

// WaitForInFlight blocks until in-flight requests reach zero or ctx is done.
// checkInterval is the interval between count checks.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if inFlight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
