package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP, cache, document store
// and schedule resolution instrumentation. A nil *MetricsService is a no-op.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLookups       *prometheus.CounterVec
	cacheWrite         prometheus.Observer
	storeDuration      *prometheus.HistogramVec
	resolutionDuration *prometheus.HistogramVec
	resolutionTotal    *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_cache_lookups_total",
		Help: "Schedule cache lookups by result",
	}, []string{"result"})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_cache_write_seconds",
		Help:    "Latency for schedule cache writes",
		Buckets: prometheus.DefBuckets,
	})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "document_store_operation_seconds",
		Help:    "Duration of document store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection", "outcome"})

	resolutionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_resolution_seconds",
		Help:    "Duration of schedule resolution per role",
		Buckets: prometheus.DefBuckets,
	}, []string{"role"})

	resolutionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_resolutions_total",
		Help: "Schedule resolutions by role and outcome",
	}, []string{"role", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheWrite, storeDuration, resolutionDuration, resolutionTotal, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLookups:       cacheLookups,
		cacheWrite:         cacheWrite,
		storeDuration:      storeDuration,
		resolutionDuration: resolutionDuration,
		resolutionTotal:    resolutionTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request duration and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreOperation records a document store call.
func (m *MetricsService) ObserveStoreOperation(operation, collection, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation, collection, outcome).Observe(duration.Seconds())
}

// ObserveResolution records one schedule resolution.
func (m *MetricsService) ObserveResolution(role, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.resolutionDuration.WithLabelValues(role).Observe(duration.Seconds())
	m.resolutionTotal.WithLabelValues(role, outcome).Inc()
}
