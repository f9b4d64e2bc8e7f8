package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lucas-hudsn/wavereader/internal/cache"
	"github.com/lucas-hudsn/wavereader/internal/config"
	"github.com/lucas-hudsn/wavereader/internal/forecast"
	httphandler "github.com/lucas-hudsn/wavereader/internal/http"
	"github.com/lucas-hudsn/wavereader/internal/lifecycle"
	"github.com/lucas-hudsn/wavereader/internal/meteo"
	"github.com/lucas-hudsn/wavereader/internal/observability"
	"github.com/lucas-hudsn/wavereader/internal/service"
	"github.com/lucas-hudsn/wavereader/internal/store"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	breakStore, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("break store", zap.Error(err))
	}
	defer func() { _ = breakStore.Close() }()
	logger.Info("break store opened", zap.String("path", cfg.DatabasePath))

	meteoClient := meteo.NewOpenMeteoClient(cfg.MarineAPIURL, cfg.WeatherAPIURL, cfg.MeteoTimeout)

	geminiClient, err := forecast.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiModel, cfg.GeminiTimeout)
	if err != nil {
		logger.Fatal("gemini client (set GEMINI_API_KEY or config/secrets.yaml gemini_api_key)", zap.Error(err))
	}
	generator := forecast.NewGenerator(geminiClient)

	var snapshotCache cache.SnapshotCache
	var memcacheCloser *cache.MemcachedSnapshotCache
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedSnapshotCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		snapshotCache = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		snapshotCache = cache.NewInMemorySnapshotCache()
		logger.Info("cache backend: in_memory")
	}

	forecastService := service.NewForecastService(
		breakStore, meteoClient, snapshotCache, generator,
		cfg.CacheTTL, cfg.NegativeCacheTTL, cfg.CoalesceTimeout,
	)

	governor := httphandler.NewGovernor(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	governorDone := make(chan struct{})
	go governor.PrunePeriodic(governorDone, time.Minute)

	handler := httphandler.NewHandler(forecastService, breakStore, logger, cfg.BreakNameMinLength, cfg.BreakNameMaxLength)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if len(cfg.WarmBreaks) > 0 {
		warmer := cache.NewSnapshotWarmer(forecastService, logger)
		warmCtx, warmCancel := context.WithTimeout(ctx, 2*time.Minute)
		if err := warmer.Warm(warmCtx, cfg.WarmBreaks); err != nil {
			logger.Warn("cache warming failed", zap.Error(err))
		}
		warmCancel()
		if cfg.WarmInterval > 0 {
			go func() {
				if err := warmer.WarmPeriodic(ctx, cfg.WarmBreaks, cfg.WarmInterval); err != nil && err != context.Canceled {
					logger.Error("periodic cache warming stopped", zap.Error(err))
				}
			}()
		}
	}

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/api/health", handler.GetHealth).Methods("GET")
	router.HandleFunc("/api/states", handler.GetStates).Methods("GET")
	router.HandleFunc("/api/breaks", handler.ListBreaks).Methods("GET")
	router.HandleFunc("/api/breaks/{state}", handler.GetBreaksByState).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	forecastRouter := router.PathPrefix("/api/break").Subrouter()
	forecastRouter.Use(httphandler.GovernorMiddleware(governor))
	forecastRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	forecastRouter.HandleFunc("/{name}", handler.GetBreakDetail).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	close(governorDone)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	observability.RecordShutdownInFlight(inFlight)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
