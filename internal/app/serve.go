package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/adminapi"
	"netpress/internal/infra/config"
	"netpress/internal/infra/telemetry"
)

// ServeOptions configures a serving process.
type ServeOptions struct {
	ConfigPath string
	Version    string
	Logger     *zap.Logger
}

// Serve loads the config, builds the runtime, and runs the admin API, the
// observability server, and the config watcher until ctx is canceled or one
// of them fails. It blocks.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := config.NewLoader(logger)
	cfg, err := loader.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	runtime, err := BuildRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := runtime.Close(); err != nil {
			logger.Warn("runtime close", zap.Error(err))
		}
	}()

	logger.Info("serving",
		zap.String("config", opts.ConfigPath),
		zap.Bool("network_mode", cfg.Network.Enabled),
		zap.Int64("current_site", cfg.Network.CurrentSite),
		zap.String("admin", cfg.Admin.ListenAddress),
		zap.String("observability", cfg.Observability.ListenAddress))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	admin := adminapi.NewServer(cfg.Admin, runtime.AdminDeps(opts.Version))

	errChan := make(chan error, 3)
	go func() {
		errChan <- admin.Run(runCtx)
	}()
	go func() {
		errChan <- telemetry.StartServer(runCtx, telemetry.ServerOptions{
			Addr:     cfg.Observability.ListenAddress,
			Health:   runtime.HealthFunc(opts.Version),
			Registry: runtime.Prom,
		}, logger)
	}()
	if opts.ConfigPath != "" {
		watcher := config.NewWatcher(loader, opts.ConfigPath, cfg, func(next domain.Config, diff domain.ConfigDiff) {
			runtime.ApplyConfig(runCtx, next, diff)
		}, logger)
		go func() {
			errChan <- watcher.Run(runCtx)
		}()
	}

	err = <-errChan
	cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
