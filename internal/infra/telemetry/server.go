package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

// HealthReport is the /healthz payload on both the observability server and
// the admin API.
type HealthReport struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	NetworkMode bool   `json:"network_mode"`
	TotalSites  int    `json:"total_sites"`
}

// HealthFunc produces the current health report. A nil func reports a bare
// "ok".
type HealthFunc func(ctx context.Context) HealthReport

type ServerOptions struct {
	Addr     string
	Health   HealthFunc
	Registry prometheus.Gatherer
}

// StartServer serves /metrics and /healthz until ctx is canceled, then
// shuts down gracefully. It blocks.
func StartServer(ctx context.Context, opts ServerOptions, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("telemetry")

	addr := opts.Addr
	if addr == "" {
		addr = domain.DefaultObservabilityListenAddr
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", HealthHandler(opts.Health))

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("observability server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("observability server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("observability server shutdown error", zap.Error(err))
			return err
		}
		logger.Info("observability server stopped")
		return nil
	}
}

// HealthHandler serves a health report as JSON. The admin API mounts the
// same handler so both surfaces agree.
func HealthHandler(health HealthFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := HealthReport{Status: "ok"}
		if health != nil {
			report = health(r.Context())
		}
		if report.Status == "" {
			report.Status = "ok"
		}

		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	})
}
