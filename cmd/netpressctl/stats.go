package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

const statsMetricPrefix = "netpress_"

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show process metrics from the observability server",
		RunE: func(c *cobra.Command, _ []string) error {
			families, err := scrapeMetrics(opts.metricsAddress, time.Duration(opts.timeoutSeconds)*time.Second)
			if err != nil {
				return err
			}
			return printMetricFamilies(families, opts.jsonOutput)
		},
	}
}

func scrapeMetrics(address string, timeout time.Duration) (map[string]*dto.MetricFamily, error) {
	address = strings.TrimSuffix(strings.TrimSpace(address), "/")
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(address + "/metrics")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics endpoint returned status %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	return parser.TextToMetricFamilies(resp.Body)
}

func printMetricFamilies(families map[string]*dto.MetricFamily, jsonOutput bool) error {
	names := make([]string, 0, len(families))
	for name := range families {
		if strings.HasPrefix(name, statsMetricPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if jsonOutput {
		out := make(map[string]any, len(names))
		for _, name := range names {
			family := families[name]
			samples := make([]map[string]any, 0, len(family.GetMetric()))
			for _, metric := range family.GetMetric() {
				samples = append(samples, map[string]any{
					"labels": labelMap(metric),
					"value":  sampleValue(metric),
				})
			}
			out[name] = samples
		}
		return writeJSON(out)
	}

	for _, name := range names {
		family := families[name]
		for _, metric := range family.GetMetric() {
			labels := formatLabels(metric)
			fmt.Printf("%s%s\t%g\n", name, labels, sampleValue(metric))
		}
	}
	return nil
}

func labelMap(metric *dto.Metric) map[string]string {
	labels := make(map[string]string, len(metric.GetLabel()))
	for _, pair := range metric.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	return labels
}

func formatLabels(metric *dto.Metric) string {
	pairs := metric.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// sampleValue flattens the sample kinds this process emits: counters,
// gauges, and histograms (reported by their sample count).
func sampleValue(metric *dto.Metric) float64 {
	switch {
	case metric.GetCounter() != nil:
		return metric.GetCounter().GetValue()
	case metric.GetGauge() != nil:
		return metric.GetGauge().GetValue()
	case metric.GetHistogram() != nil:
		return float64(metric.GetHistogram().GetSampleCount())
	case metric.GetSummary() != nil:
		return float64(metric.GetSummary().GetSampleCount())
	default:
		return metric.GetUntyped().GetValue()
	}
}
