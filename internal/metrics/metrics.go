// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Resolution metrics
	ResolutionsTotal          *prometheus.CounterVec
	ResolutionDurationSeconds *prometheus.HistogramVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPDurationSeconds    *prometheus.HistogramVec
	HTTPErrorsTotal        *prometheus.CounterVec
	RateLimiterDropped     *prometheus.CounterVec
	RateLimiterActiveUsers prometheus.Gauge

	// Data metrics
	KnowledgeEntries   prometheus.Gauge
	ConversationsTotal prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ResolutionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_resolutions_total",
				Help: "Total number of answer resolutions by source",
			},
			[]string{"source"}, // source: knowledge_base, llm, fallback, invalid
		),

		ResolutionDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edubot_resolution_duration_seconds",
				Help:    "Answer resolution duration in seconds by source",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10}, // Matches 10s LLM timeout
			},
			[]string{"source"},
		),

		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_llm_requests_total",
				Help: "Total number of LLM generation requests by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, rate_limited
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edubot_llm_duration_seconds",
				Help:    "LLM generation duration in seconds by provider",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10}, // Matches 10s LLM timeout
			},
			[]string{"provider"},
		),

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edubot_http_duration_seconds",
				Help:    "HTTP request duration in seconds by path",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15},
			},
			[]string{"path"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: empty_message, not_found, internal, etc.
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubot_rate_limiter_dropped_total",
				Help: "Total requests that exceeded a rate limit by limiter type",
			},
			[]string{"limiter"}, // limiter: llm
		),

		RateLimiterActiveUsers: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "edubot_rate_limiter_active_users",
				Help: "Current number of sessions tracked by the LLM rate limiter",
			},
		),

		KnowledgeEntries: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "edubot_knowledge_entries",
				Help: "Current number of knowledge-base entries",
			},
		),

		ConversationsTotal: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "edubot_conversations",
				Help: "Current number of stored conversations",
			},
		),
	}

	return m
}

// RecordResolution increments the resolution counter for a source.
func (m *Metrics) RecordResolution(source string, seconds float64) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(source).Inc()
	m.ResolutionDurationSeconds.WithLabelValues(source).Observe(seconds)
}

// RecordLLMRequest records an LLM call outcome.
func (m *Metrics) RecordLLMRequest(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	if status == "success" || status == "error" {
		m.LLMDurationSeconds.WithLabelValues(provider).Observe(seconds)
	}
}

// RecordHTTPError increments the HTTP error counter.
func (m *Metrics) RecordHTTPError(errorType, module string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop increments the dropped-request counter for a limiter.
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

// SetRateLimiterUsers sets the active rate limiter user gauge.
func (m *Metrics) SetRateLimiterUsers(count int) {
	if m == nil {
		return
	}
	m.RateLimiterActiveUsers.Set(float64(count))
}

// SetKnowledgeEntries sets the knowledge entry gauge.
func (m *Metrics) SetKnowledgeEntries(count int) {
	if m == nil {
		return
	}
	m.KnowledgeEntries.Set(float64(count))
}

// SetConversations sets the conversation gauge.
func (m *Metrics) SetConversations(count int) {
	if m == nil {
		return
	}
	m.ConversationsTotal.Set(float64(count))
}
