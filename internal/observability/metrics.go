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

	// Provider call rate per model. Watch for: error vs success ratio per model.
	ImageGenCallsTotal *prometheus.CounterVec

	// Provider latency per call. Image generation routinely runs tens of seconds.
	ImageGenDuration *prometheus.HistogramVec

	// Fallback-model switches. Watch for: sustained nonzero = preferred model unhealthy.
	ImageGenFallbacksTotal prometheus.Counter

	// Generation outcomes at the orchestration layer (success, quota_exhausted,
	// all_models_unavailable, error).
	GenerationsTotal *prometheus.CounterVec

	// Image cache hits per backend. Hit rate = hits/(hits+imageGenCallsTotal).
	CacheHitsTotal *prometheus.CounterVec

	// Cache operation failures by operation (get, set, evict). Set failures are
	// swallowed by design, so this counter is the only trace of them.
	CacheErrorsTotal *prometheus.CounterVec

	// Weather fetch outcomes (success, error, simulated).
	WeatherFetchTotal *prometheus.CounterVec

	// Live frames registered with the orchestrator.
	FramesActive prometheus.Gauge

	// Rate limit denials on the relay. Watch for: overload, abuse.
	RateLimitDeniedTotal prometheus.Counter
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
	ImageGenCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageGenCallsTotal",
			Help: "Total number of image provider calls",
		},
		[]string{"model", "status"},
	)
	ImageGenDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imageGenDurationSeconds",
			Help:    "Image provider latency in seconds (per call)",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		},
		[]string{"model"},
	)
	ImageGenFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imageGenFallbacksTotal",
			Help: "Total number of switches to a fallback model",
		},
	)
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generationsTotal",
			Help: "Frame generation outcomes",
		},
		[]string{"outcome"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of image cache hits",
		},
		[]string{"backend"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Image cache operation failures",
		},
		[]string{"operation"},
	)
	WeatherFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherFetchTotal",
			Help: "Weather fetch outcomes (success, error, simulated)",
		},
		[]string{"status"},
	)
	FramesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "framesActive",
			Help: "Number of frames currently registered",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ImageGenCallsTotal, ImageGenDuration, ImageGenFallbacksTotal,
		GenerationsTotal, CacheHitsTotal, CacheErrorsTotal,
		WeatherFetchTotal, FramesActive, RateLimitDeniedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
