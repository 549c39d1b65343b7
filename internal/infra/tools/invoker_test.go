package tools

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netpress/internal/domain"
	"netpress/internal/infra/telemetry"
)

type recordingMetrics struct {
	telemetry.NoopMetrics
	mu       sync.Mutex
	calls    []domain.ToolMetric
	searched []int
}

func (m *recordingMetrics) ObserveToolCall(metric domain.ToolMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, metric)
}

func (m *recordingMetrics) ObserveSitesSearched(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searched = append(m.searched, count)
}

func registryWith(t *testing.T, tools ...domain.ToolDescriptor) *domain.Registry {
	t.Helper()
	reg := domain.NewRegistry()
	reg.Register(domain.Registration{Provider: "test", Priority: 1, Tools: tools})
	return reg
}

func TestInvoker_RecordsSuccessAndSitesSearched(t *testing.T) {
	metrics := &recordingMetrics{}
	reg := registryWith(t, domain.ToolDescriptor{
		Name: "search_posts",
		Handler: func(context.Context, domain.Params) domain.ToolResult {
			return domain.OK("search_posts", map[string]any{"sites_searched": 3})
		},
	})

	result := NewInvoker(reg, metrics, nil).Invoke(context.Background(), "search_posts", domain.Params{})
	require.True(t, result.Success)

	require.Len(t, metrics.calls, 1)
	require.Equal(t, "search_posts", metrics.calls[0].Tool)
	require.True(t, metrics.calls[0].Success)
	require.Equal(t, []int{3}, metrics.searched)
}

func TestInvoker_UnknownToolIsStructuredFailure(t *testing.T) {
	metrics := &recordingMetrics{}
	result := NewInvoker(domain.NewRegistry(), metrics, nil).Invoke(context.Background(), "nope", nil)

	require.False(t, result.Success)
	require.Equal(t, "nope", result.ToolName)
	require.Len(t, metrics.calls, 1)
	require.False(t, metrics.calls[0].Success)
}

func TestInvoker_MintsJobMetaWhenAbsent(t *testing.T) {
	var seen telemetry.JobMeta
	reg := registryWith(t, domain.ToolDescriptor{
		Name: "probe",
		Handler: func(ctx context.Context, _ domain.Params) domain.ToolResult {
			seen, _ = telemetry.JobMetaFromContext(ctx)
			return domain.OK("probe", nil)
		},
	})

	NewInvoker(reg, nil, nil).Invoke(context.Background(), "probe", domain.Params{})
	require.NotEmpty(t, seen.JobID)
}

func TestInvoker_PropagatesCallerJobID(t *testing.T) {
	var seen string
	reg := registryWith(t, domain.ToolDescriptor{
		Name: "probe",
		Handler: func(ctx context.Context, _ domain.Params) domain.ToolResult {
			seen, _ = telemetry.JobIDFromContext(ctx)
			return domain.OK("probe", nil)
		},
	})

	NewInvoker(reg, nil, nil).Invoke(context.Background(), "probe", domain.Params{"job_id": "job-7"})
	require.Equal(t, "job-7", seen)
}

func TestInvoker_DurationObserved(t *testing.T) {
	metrics := &recordingMetrics{}
	reg := registryWith(t, domain.ToolDescriptor{
		Name: "slow",
		Handler: func(context.Context, domain.Params) domain.ToolResult {
			time.Sleep(5 * time.Millisecond)
			return domain.OK("slow", nil)
		},
	})

	NewInvoker(reg, metrics, nil).Invoke(context.Background(), "slow", nil)
	require.Len(t, metrics.calls, 1)
	require.GreaterOrEqual(t, metrics.calls[0].Duration, 5*time.Millisecond)
}
