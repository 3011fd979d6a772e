package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/cronograma-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation on a private registry.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	importRuns      *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	importDuration  prometheus.Observer
	ruleDuration    *prometheus.HistogramVec
	studentsAtRisk  prometheus.Gauge

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the service collectors.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	importRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_import_runs_total",
		Help: "Schedule import runs by outcome",
	}, []string{"outcome"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_import_records_total",
		Help: "Catalog records touched by schedule imports",
	}, []string{"kind"})

	importDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_import_duration_seconds",
		Help:    "Duration of schedule import runs",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	ruleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plan_rule_duration_seconds",
		Help:    "Duration of plan rule evaluations",
		Buckets: prometheus.DefBuckets,
	}, []string{"rule"})

	studentsAtRisk := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "students_at_risk",
		Help: "Students flagged at risk by the last cohort evaluation",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		importRuns, importRows, importDuration, ruleDuration, studentsAtRisk, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		importRuns:      importRuns,
		importRows:      importRows,
		importDuration:  importDuration,
		ruleDuration:    ruleDuration,
		studentsAtRisk:  studentsAtRisk,
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

// Registry returns the private registry backing the service.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordImport records the outcome of a schedule import run. A nil summary marks a
// run that failed before processing rows.
func (m *MetricsService) RecordImport(summary *models.ImportSummary, duration time.Duration) {
	if m == nil {
		return
	}
	m.importDuration.Observe(duration.Seconds())
	if summary == nil {
		m.importRuns.WithLabelValues("failed").Inc()
		return
	}
	outcome := "ok"
	if summary.ErrorCount > 0 {
		outcome = "partial"
	}
	m.importRuns.WithLabelValues(outcome).Inc()
	m.importRows.WithLabelValues("course_created").Add(float64(summary.CoursesCreated))
	m.importRows.WithLabelValues("course_updated").Add(float64(summary.CoursesUpdated))
	m.importRows.WithLabelValues("source_created").Add(float64(summary.SourcesCreated))
	m.importRows.WithLabelValues("source_updated").Add(float64(summary.SourcesUpdated))
	m.importRows.WithLabelValues("row_error").Add(float64(summary.ErrorCount))
}

// ObserveRule records how long one rule evaluation took.
func (m *MetricsService) ObserveRule(rule string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ruleDuration.WithLabelValues(rule).Observe(duration.Seconds())
}

// SetStudentsAtRisk publishes the size of the last at-risk listing.
func (m *MetricsService) SetStudentsAtRisk(n int) {
	if m == nil {
		return
	}
	m.studentsAtRisk.Set(float64(n))
}
