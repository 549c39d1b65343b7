package app

import (
	"context"

	"go.uber.org/zap"

	"netpress/internal/infra/config"
	"netpress/internal/infra/mcpserver"
)

// MCPOptions configures an MCP stdio process.
type MCPOptions struct {
	ConfigPath string
	Version    string
	Logger     *zap.Logger
}

// RunMCP builds the runtime and serves the tool registry over MCP stdio
// until ctx is canceled or the client disconnects. Logs must not reach
// stdout here; callers route them to stderr or a file.
func RunMCP(ctx context.Context, opts MCPOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.NewLoader(logger).LoadOrDefault(opts.ConfigPath)
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

	return mcpserver.New(runtime.Registry, runtime.Invoker, opts.Version, logger).Run(ctx)
}
