package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification outcomes recorded by the access guard.
const (
	VerificationMatched    = "matched"
	VerificationMismatched = "mismatched"
	VerificationThrottled  = "throttled"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	rateLimitRejected *prometheus.CounterVec
	verifications     *prometheus.CounterVec
	eventsCreated     prometheus.Counter
	responsesSaved    prometheus.Counter
	responsesDeleted  prometheus.Counter

	requestCount uint64
}

// NewMetricsService registers core Prometheus collectors.
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

	rateLimitRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Requests rejected by the fixed-window limiter",
	}, []string{"policy"})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_code_verifications_total",
		Help: "Admin code checks by outcome",
	}, []string{"outcome"})

	eventsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_created_total",
		Help: "Events created",
	})

	responsesSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "responses_submitted_total",
		Help: "Availability responses inserted or overwritten",
	})

	responsesDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "responses_deleted_total",
		Help: "Responses removed by hosts",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, rateLimitRejected, verifications, eventsCreated, responsesSaved, responsesDeleted, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		rateLimitRejected: rateLimitRejected,
		verifications:     verifications,
		eventsCreated:     eventsCreated,
		responsesSaved:    responsesSaved,
		responsesDeleted:  responsesDeleted,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordRateLimited counts a rejection for the named policy.
func (m *MetricsService) RecordRateLimited(policy string) {
	if m == nil {
		return
	}
	m.rateLimitRejected.WithLabelValues(policy).Inc()
}

// RecordVerification counts an admin code check.
func (m *MetricsService) RecordVerification(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

// RecordEventCreated counts a new event.
func (m *MetricsService) RecordEventCreated() {
	if m == nil {
		return
	}
	m.eventsCreated.Inc()
}

// RecordResponseSubmitted counts an upserted response.
func (m *MetricsService) RecordResponseSubmitted() {
	if m == nil {
		return
	}
	m.responsesSaved.Inc()
}

// RecordResponseDeleted counts a removed response.
func (m *MetricsService) RecordResponseDeleted() {
	if m == nil {
		return
	}
	m.responsesDeleted.Inc()
}

// RequestCount reports how many HTTP requests were observed since start.
func (m *MetricsService) RequestCount() uint64 {
	if m == nil {
		return 0
	}
	return atomic.LoadUint64(&m.requestCount)
}
