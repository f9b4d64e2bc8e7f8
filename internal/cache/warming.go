package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lucas-hudsn/wavereader/internal/models"
	"github.com/lucas-hudsn/wavereader/internal/observability"
)

// BreakFetcher is implemented by the service layer to resolve a break and its
// forecast. Used by SnapshotWarmer to avoid a circular dependency on the
// service package.
type BreakFetcher interface {
	GetBreakDetail(ctx context.Context, name string) (models.BreakDetail, error)
}

// SnapshotWarmer warms the snapshot cache by prefetching forecasts for a list
// of popular breaks so the first real request for each hits a warm cache.
type SnapshotWarmer struct {
	fetcher BreakFetcher
	logger  *zap.Logger
}

// NewSnapshotWarmer creates a SnapshotWarmer that uses the given fetcher and logger.
func NewSnapshotWarmer(fetcher BreakFetcher, logger *zap.Logger) *SnapshotWarmer {
	return &SnapshotWarmer{fetcher: fetcher, logger: logger}
}

// Warm resolves each break concurrently, populating the snapshot cache via
// the fetcher. Returns an error if any break failed (aggregated).
func (w *SnapshotWarmer) Warm(ctx context.Context, breaks []string) error {
	start := time.Now()
	observability.CacheWarmingTotal.Inc()
	if w.logger != nil {
		w.logger.Info("warming snapshot cache", zap.Int("breaks", len(breaks)))
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(breaks))
	for _, name := range breaks {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.fetcher.GetBreakDetail(ctx, name)
			if err != nil {
				errCh <- fmt.Errorf("warm %s: %w", name, err)
			}
		}()
	}
	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	duration := time.Since(start).Seconds()
	observability.CacheWarmingDurationSeconds.Observe(duration)
	if w.logger != nil {
		w.logger.Info("snapshot cache warming complete", zap.Int("breaks", len(breaks)), zap.Int("errors", len(errs)), zap.Float64("duration_seconds", duration))
	}
	if len(errs) > 0 {
		observability.CacheWarmingErrorsTotal.Inc()
		return fmt.Errorf("cache warming: %v", errs)
	}
	return nil
}

// WarmPeriodic runs an initial Warm, then refreshes at the given interval until ctx is done.
func (w *SnapshotWarmer) WarmPeriodic(ctx context.Context, breaks []string, interval time.Duration) error {
	if err := w.Warm(ctx, breaks); err != nil && w.logger != nil {
		w.logger.Warn("initial cache warm failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Warm(ctx, breaks); err != nil && w.logger != nil {
				w.logger.Warn("periodic cache warm failed", zap.Error(err))
			}
		}
	}
}
