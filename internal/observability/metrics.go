package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Open-Meteo call rate per upstream (marine, weather). Watch for: error vs success ratio.
	MeteoAPICallsTotal *prometheus.CounterVec

	// Open-Meteo latency per upstream. Watch for: p95 near the 10s call timeout.
	MeteoAPIDuration *prometheus.HistogramVec

	// Upstream circuit breaker transitions. Watch for: repeated open transitions.
	UpstreamBreakerTransitionsTotal *prometheus.CounterVec

	// Generative backend call rate. Watch for: error ratio (forecasts silently degrade).
	ForecastGenerationTotal *prometheus.CounterVec

	// Generative backend latency. Watch for: p95 > 10s (slow narrations).
	ForecastGenerationDuration *prometheus.HistogramVec

	// Snapshot cache hits, labelled snapshot (positive) or negative (cool-off).
	CacheHitsTotal *prometheus.CounterVec

	// Snapshot cache backend errors by operation. Only nonzero with memcached.
	CacheErrorsTotal *prometheus.CounterVec

	// Responses served without weather or forecast after an enrichment failure.
	DegradedResponsesTotal *prometheus.CounterVec

	// Rate limit denials on the forecast endpoint. Watch for: abusive clients.
	RateLimitDeniedTotal prometheus.Counter

	// Cache warming runs, failures, and duration.
	CacheWarmingTotal           prometheus.Counter
	CacheWarmingErrorsTotal     prometheus.Counter
	CacheWarmingDurationSeconds prometheus.Histogram

	// In-flight requests observed at shutdown.
	ShutdownInFlightRequests prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	MeteoAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meteoApiCallsTotal",
			Help: "Total number of Open-Meteo API calls",
		},
		[]string{"upstream", "status"},
	)
	MeteoAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meteoApiDurationSeconds",
			Help:    "Open-Meteo API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"upstream", "status"},
	)
	UpstreamBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions per upstream",
		},
		[]string{"upstream", "from", "to"},
	)
	ForecastGenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastGenerationTotal",
			Help: "Total number of generative backend calls",
		},
		[]string{"status"},
	)
	ForecastGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastGenerationDurationSeconds",
			Help:    "Generative backend latency in seconds (per request)",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of snapshot cache hits (positive and negative entries)",
		},
		[]string{"entryType"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Total number of snapshot cache backend errors",
		},
		[]string{"operation"},
	)
	DegradedResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degradedResponsesTotal",
			Help: "Break detail responses missing an enrichment after an upstream failure",
		},
		[]string{"field"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	CacheWarmingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingTotal",
			Help: "Total number of cache warming runs",
		},
	)
	CacheWarmingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingErrorsTotal",
			Help: "Total number of cache warming runs that had at least one failure",
		},
	)
	CacheWarmingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cacheWarmingDurationSeconds",
			Help:    "Cache warming run duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	ShutdownInFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shutdownInFlightRequests",
			Help: "In-flight requests observed when graceful shutdown began",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		MeteoAPICallsTotal, MeteoAPIDuration, UpstreamBreakerTransitionsTotal,
		ForecastGenerationTotal, ForecastGenerationDuration,
		CacheHitsTotal, CacheErrorsTotal, DegradedResponsesTotal,
		RateLimitDeniedTotal,
		CacheWarmingTotal, CacheWarmingErrorsTotal, CacheWarmingDurationSeconds,
		ShutdownInFlightRequests,
	)
}

// RecordUpstreamBreakerTransition records a circuit breaker state change for an upstream.
func RecordUpstreamBreakerTransition(upstream, from, to string) {
	UpstreamBreakerTransitionsTotal.WithLabelValues(upstream, from, to).Inc()
}

// RecordShutdownInFlight records how many requests were in flight at shutdown.
func RecordShutdownInFlight(count int64) {
	ShutdownInFlightRequests.Set(float64(count))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
