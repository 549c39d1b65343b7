package tools

import (
	"context"
	"time"

	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/telemetry"
)

// Invoker executes registry tools with correlation and metrics attached.
// Both serving surfaces (admin API and MCP) go through it, so a tool call is
// observed identically no matter where it came from.
type Invoker struct {
	registry *domain.Registry
	metrics  domain.Metrics
	logger   *zap.Logger
}

func NewInvoker(registry *domain.Registry, metrics domain.Metrics, logger *zap.Logger) *Invoker {
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		registry: registry,
		metrics:  metrics,
		logger:   logger.Named("invoke"),
	}
}

// Invoke runs the named tool. Unknown tools yield a structured failure, not
// an error; the tool contract holds at this boundary too.
func (inv *Invoker) Invoke(ctx context.Context, name string, params domain.Params) domain.ToolResult {
	tool, ok := inv.registry.Lookup(name)
	if !ok {
		inv.metrics.ObserveToolCall(domain.ToolMetric{Tool: name, Success: false})
		return domain.Failf(name, "unknown tool: %s", name)
	}

	jobID, _ := params.String("job_id")
	ctx, meta := telemetry.EnsureJobMeta(ctx, jobID)
	logger := inv.logger.With(telemetry.JobFields(meta)...)

	started := time.Now()
	result := tool.Handler(ctx, params)
	elapsed := time.Since(started)

	inv.metrics.ObserveToolCall(domain.ToolMetric{
		Tool:     name,
		Success:  result.Success,
		Duration: elapsed,
	})
	if result.Success {
		if searched, ok := sitesSearched(result); ok {
			inv.metrics.ObserveSitesSearched(searched)
		}
		logger.Debug("tool call ok",
			zap.String("tool", name),
			zap.Duration("elapsed", elapsed))
	} else {
		logger.Debug("tool call failed",
			zap.String("tool", name),
			zap.String("error", result.Error),
			zap.Duration("elapsed", elapsed))
	}
	return result
}

func sitesSearched(result domain.ToolResult) (int, bool) {
	v, ok := result.Data["sites_searched"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
