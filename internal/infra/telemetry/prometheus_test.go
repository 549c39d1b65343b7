package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpress/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.toolCalls)
	assert.NotNil(t, m.toolDuration)
	assert.NotNil(t, m.httpDuration)
	assert.NotNil(t, m.contextReads)
	assert.NotNil(t, m.contextBuildDuration)
	assert.NotNil(t, m.contextInvalidations)
	assert.NotNil(t, m.sitesSearched)
	assert.NotNil(t, m.assistantLatency)
	assert.NotNil(t, m.assistantTokens)
}

func TestPrometheusMetrics_RegistersEverySeries(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveToolCall(domain.ToolMetric{Tool: "search_posts", Success: true, Duration: 10 * time.Millisecond})
	m.ObserveToolCall(domain.ToolMetric{Tool: "read_post", Success: false, Duration: 5 * time.Millisecond})
	m.ObserveHTTPRequest("GET", "/api/v1/sites", 200, 3*time.Millisecond)
	m.ObserveContextRead(true)
	m.ObserveContextRead(false)
	m.ObserveContextBuild(20 * time.Millisecond)
	m.IncContextInvalidation(domain.InvalidationTrigger(domain.EventPostCreated))
	m.IncContextInvalidation(domain.TriggerManual)
	m.ObserveSitesSearched(3)
	m.ObserveAssistantCall("openai", "gpt-4o", 500*time.Millisecond, nil)
	m.ObserveAssistantCall("openai", "gpt-4o", 100*time.Millisecond, errors.New("rate limited"))
	m.AddAssistantTokens("openai", "gpt-4o", 128)

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, family := range metrics {
		names = append(names, family.GetName())
	}

	assert.Contains(t, names, "netpress_tool_calls_total")
	assert.Contains(t, names, "netpress_tool_duration_seconds")
	assert.Contains(t, names, "netpress_http_request_duration_seconds")
	assert.Contains(t, names, "netpress_context_reads_total")
	assert.Contains(t, names, "netpress_context_build_seconds")
	assert.Contains(t, names, "netpress_context_invalidations_total")
	assert.Contains(t, names, "netpress_search_sites_searched")
	assert.Contains(t, names, "netpress_assistant_latency_seconds")
	assert.Contains(t, names, "netpress_assistant_tokens_total")
}

func TestPrometheusMetrics_ZeroTokensNotCounted(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)

	m.AddAssistantTokens("openai", "gpt-4o", 0)
	m.AddAssistantTokens("openai", "gpt-4o", -3)

	metrics, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range metrics {
		require.NotEqual(t, "netpress_assistant_tokens_total", family.GetName())
	}
}

func TestHTTPStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", httpStatusClass(200))
	assert.Equal(t, "3xx", httpStatusClass(304))
	assert.Equal(t, "4xx", httpStatusClass(404))
	assert.Equal(t, "5xx", httpStatusClass(503))
}
