package domain

import "time"

// ToolMetric captures one tool invocation through the registry.
type ToolMetric struct {
	Tool     string
	Success  bool
	Duration time.Duration
}

// InvalidationTrigger labels what dropped the context cache. Content
// mutations use the event kind as the trigger.
type InvalidationTrigger string

const (
	// TriggerConfigChange marks invalidations caused by a config reload.
	TriggerConfigChange InvalidationTrigger = "config_change"
	// TriggerManual marks operator-requested invalidations.
	TriggerManual InvalidationTrigger = "manual"
)

// Metrics records operational metrics for tools, the context cache, the
// admin API, and the assistant.
type Metrics interface {
	ObserveToolCall(metric ToolMetric)
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
	ObserveContextRead(hit bool)
	ObserveContextBuild(duration time.Duration)
	IncContextInvalidation(trigger InvalidationTrigger)
	ObserveSitesSearched(count int)
	ObserveAssistantCall(provider, model string, duration time.Duration, err error)
	AddAssistantTokens(provider, model string, tokens int)
}
