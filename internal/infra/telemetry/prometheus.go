// Package telemetry carries the process's observability plumbing: metric
// recorders, job correlation on contexts, and the metrics/health HTTP
// server.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"netpress/internal/domain"
)

type PrometheusMetrics struct {
	toolCalls            *prometheus.CounterVec
	toolDuration         *prometheus.HistogramVec
	httpDuration         *prometheus.HistogramVec
	contextReads         *prometheus.CounterVec
	contextBuildDuration prometheus.Histogram
	contextInvalidations *prometheus.CounterVec
	sitesSearched        prometheus.Histogram
	assistantLatency     *prometheus.HistogramVec
	assistantTokens      *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netpress_tool_calls_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netpress_tool_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"tool"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netpress_http_request_duration_seconds",
				Help:    "Duration of admin API requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		contextReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netpress_context_reads_total",
				Help: "Context cache reads by outcome",
			},
			[]string{"outcome"},
		),
		contextBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "netpress_context_build_seconds",
				Help:    "Duration of context document builds in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		contextInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netpress_context_invalidations_total",
				Help: "Context cache invalidations by trigger",
			},
			[]string{"trigger"},
		),
		sitesSearched: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "netpress_search_sites_searched",
				Help:    "Eligible sites visited per network search",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),
		assistantLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netpress_assistant_latency_seconds",
				Help:    "Latency of assistant model calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "model", "status"},
		),
		assistantTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netpress_assistant_tokens_total",
				Help: "Total number of tokens consumed by assistant model calls",
			},
			[]string{"provider", "model"},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolCall(metric domain.ToolMetric) {
	status := "success"
	if !metric.Success {
		status = "failure"
	}
	p.toolCalls.WithLabelValues(metric.Tool, status).Inc()
	p.toolDuration.WithLabelValues(metric.Tool).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpDuration.WithLabelValues(method, route, httpStatusClass(status)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveContextRead(hit bool) {
	outcome := "hit"
	if !hit {
		outcome = "miss"
	}
	p.contextReads.WithLabelValues(outcome).Inc()
}

func (p *PrometheusMetrics) ObserveContextBuild(duration time.Duration) {
	p.contextBuildDuration.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) IncContextInvalidation(trigger domain.InvalidationTrigger) {
	p.contextInvalidations.WithLabelValues(string(trigger)).Inc()
}

func (p *PrometheusMetrics) ObserveSitesSearched(count int) {
	p.sitesSearched.Observe(float64(count))
}

func (p *PrometheusMetrics) ObserveAssistantCall(provider, model string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.assistantLatency.WithLabelValues(provider, model, status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) AddAssistantTokens(provider, model string, tokens int) {
	if tokens <= 0 {
		return
	}
	p.assistantTokens.WithLabelValues(provider, model).Add(float64(tokens))
}

// httpStatusClass folds status codes into their class to keep label
// cardinality flat.
func httpStatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
