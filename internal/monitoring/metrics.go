package monitoring

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds application metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	modelCalls      *prometheus.CounterVec
	modelDuration   *prometheus.HistogramVec
	fallbackCards   prometheus.Counter
	almanacFill     *prometheus.CounterVec
	exports         *prometheus.CounterVec
	rateLimited     prometheus.Counter

	RequestCount  int64
	ErrorCount    int64
	FallbackCount int64
	AlmanacCount  int64
	StartTime     time.Time
}

// NewMetrics registers the application collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		StartTime: time.Now(),
	}

	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideamaker",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ideamaker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"route"})
	m.modelCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideamaker",
		Name:      "model_calls_total",
		Help:      "Language model calls by stage and outcome",
	}, []string{"stage", "outcome"})
	m.modelDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ideamaker",
		Name:      "model_call_duration_seconds",
		Help:      "Language model call latency",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"stage"})
	m.fallbackCards = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ideamaker",
		Name:      "fallback_cards_total",
		Help:      "Idea cards produced by the deterministic fallback",
	})
	m.almanacFill = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideamaker",
		Name:      "almanac_fill_events_total",
		Help:      "Events injected from the built-in almanac",
	}, []string{"flow"})
	m.exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideamaker",
		Name:      "calendar_exports_total",
		Help:      "Annual calendar files built by format",
	}, []string{"format"})
	m.rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ideamaker",
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the per-IP limiter",
	})

	m.registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.modelCalls, m.modelDuration,
		m.fallbackCards, m.almanacFill, m.exports, m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one finished HTTP request
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.RequestCount, 1)
	if status >= 400 {
		atomic.AddInt64(&m.ErrorCount, 1)
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordModelCall records one language model round trip
func (m *Metrics) RecordModelCall(stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.modelCalls.WithLabelValues(stage, outcome).Inc()
	m.modelDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// AddFallbackCards counts cards produced without the model
func (m *Metrics) AddFallbackCards(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddInt64(&m.FallbackCount, int64(n))
	m.fallbackCards.Add(float64(n))
}

// AddAlmanacFill counts almanac events injected by flow ("research" or "annual")
func (m *Metrics) AddAlmanacFill(flow string, n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddInt64(&m.AlmanacCount, int64(n))
	m.almanacFill.WithLabelValues(flow).Add(float64(n))
}

// RecordExport counts a built calendar file
func (m *Metrics) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// IncrementRateLimited counts a rejected request
func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// GetStats returns a small summary for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":     time.Since(m.StartTime).Seconds(),
		"total_requests":     requests,
		"error_count":        errors,
		"error_rate_percent": errorRate,
		"fallback_cards":     atomic.LoadInt64(&m.FallbackCount),
		"almanac_filled":     atomic.LoadInt64(&m.AlmanacCount),
		"start_time":         m.StartTime.Format(time.RFC3339),
	}
}
