package telemetry

import (
	"time"

	"netpress/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveToolCall(_ domain.ToolMetric) {}

func (n *NoopMetrics) ObserveHTTPRequest(_, _ string, _ int, _ time.Duration) {}

func (n *NoopMetrics) ObserveContextRead(_ bool) {}

func (n *NoopMetrics) ObserveContextBuild(_ time.Duration) {}

func (n *NoopMetrics) IncContextInvalidation(_ domain.InvalidationTrigger) {}

func (n *NoopMetrics) ObserveSitesSearched(_ int) {}

func (n *NoopMetrics) ObserveAssistantCall(_, _ string, _ time.Duration, _ error) {}

func (n *NoopMetrics) AddAssistantTokens(_, _ string, _ int) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
