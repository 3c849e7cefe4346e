package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	require.NotNil(t, m)

	m.RecordResolution("knowledge_base", 0.002)
	m.RecordLLMRequest("gemini", "success", 1.2)
	m.RecordHTTPError("empty_message", "chat")
	m.RecordRateLimiterDrop("llm")
	m.SetRateLimiterUsers(3)
	m.SetKnowledgeEntries(10)
	m.SetConversations(5)
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/messages", "200").Inc()
	m.HTTPDurationSeconds.WithLabelValues("/api/messages").Observe(0.05)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"edubot_resolutions_total",
		"edubot_resolution_duration_seconds",
		"edubot_llm_requests_total",
		"edubot_llm_duration_seconds",
		"edubot_http_requests_total",
		"edubot_http_duration_seconds",
		"edubot_http_errors_total",
		"edubot_rate_limiter_dropped_total",
		"edubot_rate_limiter_active_users",
		"edubot_knowledge_entries",
		"edubot_conversations",
	} {
		assert.True(t, names[want], "metric %s not registered", want)
	}
}

func TestRecordResolutionCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordResolution("llm", 1.5)
	m.RecordResolution("llm", 2.0)
	m.RecordResolution("fallback", 0.001)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("llm")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("fallback")))
}

func TestRecordLLMRequestSkipsDurationWhenRateLimited(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordLLMRequest("gemini", "rate_limited", 0)
	m.RecordLLMRequest("gemini", "success", 0.8)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("gemini", "rate_limited")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("gemini", "success")))

	count := testutil.CollectAndCount(m.LLMDurationSeconds)
	assert.Equal(t, 1, count, "only success and error statuses record durations")
}

func TestNilReceiverSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordResolution("llm", 1)
		m.RecordLLMRequest("gemini", "success", 1)
		m.RecordHTTPError("internal", "chat")
		m.RecordRateLimiterDrop("llm")
		m.SetRateLimiterUsers(1)
		m.SetKnowledgeEntries(1)
		m.SetConversations(1)
	})
}
