// Package app assembles the runtime from the infra packages and runs the
// serving surfaces: the admin API, the observability server, the MCP stdio
// server, and the config watcher that keeps a live process in step with its
// file.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/adminapi"
	"netpress/internal/infra/assistant"
	"netpress/internal/infra/hooks"
	"netpress/internal/infra/inject"
	"netpress/internal/infra/netcontext"
	"netpress/internal/infra/store"
	"netpress/internal/infra/telemetry"
	"netpress/internal/infra/tools"
	"netpress/internal/infra/transient"
)

// Runtime is the wired process state: stores, event bus, tool registry,
// context cache, injector chain, and the assistant. Build it once per
// process; Close releases the stores.
type Runtime struct {
	Config    domain.Config
	Store     *store.Store
	Transient *transient.Store
	Bus       *hooks.Bus
	Registry  *domain.Registry
	Builder   *netcontext.Builder
	Cache     *netcontext.Cache
	Chain     *inject.Chain
	Injector  *inject.NetworkInjector
	Assistant *assistant.Assistant
	Invoker   *tools.Invoker
	Search    *tools.SearchSettings
	Metrics   domain.Metrics
	Prom      *prometheus.Registry

	logger *zap.Logger
	detach func()
}

// BuildRuntime opens the stores and wires every component for cfg. The
// assistant model is optional: when no API key is present the runtime still
// serves, with ask limited to dry runs.
func BuildRuntime(ctx context.Context, cfg domain.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	contentStore, err := store.Open(store.Config{Path: cfg.Store.Path}, logger)
	if err != nil {
		return nil, err
	}
	transientStore, err := transient.Open(cfg.Transient.Path)
	if err != nil {
		_ = contentStore.Close()
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewPrometheusMetrics(promRegistry)

	bus := hooks.NewBus(logger)
	builder := netcontext.NewBuilder(contentStore, logger)
	cache := netcontext.NewCache(builder, transientStore, cfg.Network.CurrentSite, cfg.Network.ContextSampleSites, logger)
	cache.SetMetrics(metrics)
	detach := cache.Attach(bus)

	searchSettings := tools.NewSearchSettings(cfg.Search)
	registry := domain.NewRegistry()
	registry.Register(tools.NewSiteProvider(contentStore, cfg.Network.CurrentSite, searchSettings, logger).Registration())
	if cfg.Network.Enabled {
		registry.Register(tools.NewNetworkProvider(contentStore, cfg.Network.CurrentSite, searchSettings, logger).Registration())
	} else {
		logger.Warn("network mode disabled, serving single-site tools only",
			zap.Int64("current_site", cfg.Network.CurrentSite))
	}

	// The site injector always holds the slot; the network injector is only
	// registered in network mode, where it outranks the baseline. Registering
	// it disabled would win the slot and then inject nothing.
	chain := inject.NewChain(logger)
	inject.NewSiteInjector(builder, cfg.Network.CurrentSite, logger).Register(chain)
	networkInjector := inject.NewNetworkInjector(cache, cfg.Network.Enabled, logger)
	if cfg.Network.Enabled {
		networkInjector.Register(chain)
	}

	chatModel, err := assistant.NewChatModel(ctx, cfg.Assistant)
	if err != nil {
		logger.Warn("assistant model unavailable, ask limited to dry runs", zap.Error(err))
		chatModel = nil
	}
	asst := assistant.New(chain, chatModel, cfg.Assistant, logger)
	asst.SetMetrics(metrics)

	return &Runtime{
		Config:    cfg,
		Store:     contentStore,
		Transient: transientStore,
		Bus:       bus,
		Registry:  registry,
		Builder:   builder,
		Cache:     cache,
		Chain:     chain,
		Injector:  networkInjector,
		Assistant: asst,
		Invoker:   tools.NewInvoker(registry, metrics, logger),
		Search:    searchSettings,
		Metrics:   metrics,
		Prom:      promRegistry,
		logger:    logger.Named("app"),
		detach:    detach,
	}, nil
}

// Close detaches the cache from the bus and closes both stores.
func (r *Runtime) Close() error {
	if r.detach != nil {
		r.detach()
	}
	var firstErr error
	if r.Transient != nil {
		if err := r.Transient.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ApplyConfig applies the dynamic parts of a reloaded config in place and
// logs what still needs a restart. The tool set itself binds at startup;
// flipping network.enabled live switches the injector and the context scope
// but not the registered tools.
func (r *Runtime) ApplyConfig(ctx context.Context, cfg domain.Config, diff domain.ConfigDiff) {
	if diff.IsEmpty() {
		return
	}

	r.Injector.SetEnabled(cfg.Network.Enabled)
	r.Cache.UpdateScope(cfg.Network.CurrentSite, cfg.Network.ContextSampleSites)
	r.Search.Apply(cfg.Search)
	if cfg.Network.Enabled && !r.Config.Network.Enabled {
		r.logger.Warn("network mode enabled in config; network tools and injector register at startup, restart to serve them")
	}

	for _, field := range diff.DynamicFields {
		if field != "assistant" {
			continue
		}
		chatModel, err := assistant.NewChatModel(ctx, cfg.Assistant)
		if err != nil {
			r.logger.Warn("assistant model unavailable after reload", zap.Error(err))
		}
		r.Assistant.Reconfigure(chatModel, cfg.Assistant)
	}

	if diff.RequiresRestart() {
		r.logger.Warn("config changes require a restart to take effect",
			zap.Strings("fields", diff.RestartRequiredFields))
	}
	r.logger.Info("config reloaded",
		zap.Strings("applied", diff.DynamicFields))

	r.Config = cfg
}

// HealthFunc reports process health for /healthz on both servers.
func (r *Runtime) HealthFunc(version string) telemetry.HealthFunc {
	return func(ctx context.Context) telemetry.HealthReport {
		report := telemetry.HealthReport{
			Status:      "ok",
			Version:     version,
			NetworkMode: r.Config.Network.Enabled,
		}
		sites, err := r.Store.Sites(ctx)
		if err != nil {
			report.Status = "degraded"
			return report
		}
		report.TotalSites = len(sites)
		return report
	}
}

// AdminDeps bundles the runtime for the admin API server.
func (r *Runtime) AdminDeps(version string) adminapi.Deps {
	return adminapi.Deps{
		Store:     r.Store,
		Emitter:   r.Bus,
		Invoker:   r.Invoker,
		Registry:  r.Registry,
		Cache:     r.Cache,
		Assistant: r.Assistant,
		Metrics:   r.Metrics,
		Health:    r.HealthFunc(version),
		Logger:    r.logger,
	}
}
