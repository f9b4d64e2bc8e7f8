// Package service orchestrates break lookup, environmental fetch, and
// narrative generation into the break detail response.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lucas-hudsn/wavereader/internal/cache"
	"github.com/lucas-hudsn/wavereader/internal/meteo"
	"github.com/lucas-hudsn/wavereader/internal/models"
	"github.com/lucas-hudsn/wavereader/internal/observability"
	"github.com/lucas-hudsn/wavereader/internal/store"
)

// ErrUpstreamCoolingOff is returned when a negative cache entry records a
// recent environmental fetch failure still inside its cool-off TTL.
var ErrUpstreamCoolingOff = errors.New("environmental fetch recently failed, cooling off")

// NarrativeGenerator produces free-text forecasts from a break and snapshot.
type NarrativeGenerator interface {
	Generate(ctx context.Context, brk models.SurfBreak, snapshot models.EnvironmentalSnapshot) (string, error)
}

// ForecastService resolves a break's static record and enriches it with
// cached environmental data and a generated forecast. Enrichment failures
// degrade the response instead of failing it; only lookup failures propagate.
type ForecastService struct {
	store       store.BreakStore
	meteoClient meteo.EnvironmentalClient
	cache       cache.SnapshotCache
	generator   NarrativeGenerator
	ttl         time.Duration
	negativeTTL time.Duration
	coalescer   *requestCoalescer
}

// NewForecastService creates a ForecastService. ttl is the positive snapshot
// cache TTL; negativeTTL the cool-off recorded after a failed fetch.
// coalesceTimeout bounds how long a request waits on another request's
// in-flight fetch for the same coordinate key.
func NewForecastService(
	breakStore store.BreakStore,
	meteoClient meteo.EnvironmentalClient,
	snapshotCache cache.SnapshotCache,
	generator NarrativeGenerator,
	ttl, negativeTTL, coalesceTimeout time.Duration,
) *ForecastService {
	return &ForecastService{
		store:       breakStore,
		meteoClient: meteoClient,
		cache:       snapshotCache,
		generator:   generator,
		ttl:         ttl,
		negativeTTL: negativeTTL,
		coalescer:   newRequestCoalescer(coalesceTimeout),
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetBreakDetail looks up a break by name (case-insensitive) and attaches
// whichever of weather data and forecast could be produced. A partial result
// is a valid response: a break without coordinates, a failed environmental
// fetch, or a failed generation each degrade to the fields that did succeed.
// Returns store.ErrBreakNotFound for unknown names; any other error means the
// lookup layer itself failed.
func (s *ForecastService) GetBreakDetail(ctx context.Context, name string) (models.BreakDetail, error) {
	logger := loggerFromContext(ctx)

	brk, err := s.store.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrBreakNotFound) {
			return models.BreakDetail{}, err
		}
		return models.BreakDetail{}, fmt.Errorf("lookup break %q: %w", name, err)
	}

	detail := models.BreakDetail{SurfBreak: brk}

	if !brk.HasCoordinates() {
		if logger != nil {
			logger.Debug("break has no coordinates, serving static record", zap.String("break", brk.Name))
		}
		return detail, nil
	}

	snapshot, err := s.snapshotFor(ctx, brk.Latitude, brk.Longitude)
	if err != nil {
		observability.DegradedResponsesTotal.WithLabelValues("weather").Inc()
		if logger != nil {
			logger.Warn("environmental fetch failed, serving static record",
				zap.String("break", brk.Name), zap.Error(err))
		}
		return detail, nil
	}
	detail.WeatherData = &snapshot

	text, err := s.generator.Generate(ctx, brk, snapshot)
	if err != nil {
		observability.DegradedResponsesTotal.WithLabelValues("forecast").Inc()
		if logger != nil {
			logger.Warn("forecast generation failed, serving break with weather only",
				zap.String("break", brk.Name), zap.Error(err))
		}
		return detail, nil
	}
	detail.Forecast = text

	return detail, nil
}

// snapshotFor returns the environmental snapshot for a coordinate using the
// cache-aside pattern. Cache misses fetch upstream through the per-key
// coalescer so concurrent requests for the same rounded coordinate share one
// upstream call. Failed fetches are recorded as negative entries with the
// short cool-off TTL; successful ones with the full TTL.
func (s *ForecastService) snapshotFor(ctx context.Context, latitude, longitude float64) (models.EnvironmentalSnapshot, error) {
	key := cache.Key(latitude, longitude)
	logger := loggerFromContext(ctx)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		if logger != nil {
			logger.Warn("snapshot cache get failed", zap.String("key", key), zap.Error(err))
		}
	} else if ok {
		if !cached.Success {
			observability.CacheHitsTotal.WithLabelValues("negative").Inc()
			return models.EnvironmentalSnapshot{}, ErrUpstreamCoolingOff
		}
		observability.CacheHitsTotal.WithLabelValues("snapshot").Inc()
		if logger != nil {
			logger.Debug("snapshot cache hit", zap.String("key", key))
		}
		return cached, nil
	}

	if logger != nil {
		logger.Debug("snapshot cache miss, fetching upstream", zap.String("key", key))
	}

	// The fetch must survive the initiating caller: if its context cancelled
	// the upstream call, the cancellation would be recorded as a negative
	// entry and cool off a healthy coordinate. The meteo client bounds the
	// detached call with its own timeout.
	fetchCtx := context.WithoutCancel(ctx)

	return s.coalescer.GetOrDo(ctx, key, func() (models.EnvironmentalSnapshot, error) {
		snapshot, err := s.meteoClient.Fetch(fetchCtx, latitude, longitude)
		if err != nil {
			negative := models.EnvironmentalSnapshot{
				Success:   false,
				Latitude:  latitude,
				Longitude: longitude,
			}
			if setErr := s.cache.Set(fetchCtx, key, negative, s.negativeTTL); setErr != nil {
				observability.CacheErrorsTotal.WithLabelValues("set").Inc()
			}
			return models.EnvironmentalSnapshot{}, err
		}
		if setErr := s.cache.Set(fetchCtx, key, snapshot, s.ttl); setErr != nil {
			observability.CacheErrorsTotal.WithLabelValues("set").Inc()
			if logger != nil {
				logger.Warn("snapshot cache set failed", zap.String("key", key), zap.Error(setErr))
			}
		}
		return snapshot, nil
	})
}
