package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netpress/internal/app"
	"netpress/internal/domain"
)

type daemonOptions struct {
	configPath string
	logLevel   string
	logger     *zap.Logger
}

func main() {
	// Best effort: assistant API keys commonly live in a local .env.
	_ = godotenv.Load()

	opts := daemonOptions{
		configPath: domain.DefaultConfigFileName,
		logLevel:   "info",
		logger:     zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "netpressd",
		Short: "Content network daemon: admin API, agent tools, and context injection",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			if err := cfg.Level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
			}
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(&opts),
		newMCPCmd(&opts),
		newInitCmd(&opts),
		newValidateCmd(&opts),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newServeCmd(opts *daemonOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API and observability server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			err := app.Serve(ctx, app.ServeOptions{
				ConfigPath: opts.configPath,
				Version:    app.Version,
				Logger:     opts.logger,
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newMCPCmd(opts *daemonOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agent tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			// Production zap logs to stderr, keeping stdout clean for the
			// MCP framing.
			err := app.RunMCP(ctx, app.MCPOptions{
				ConfigPath: opts.configPath,
				Version:    app.Version,
				Logger:     opts.logger,
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newInitCmd(opts *daemonOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an annotated default config file",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.WriteDefaultConfig(opts.configPath, force); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newValidateCmd(opts *daemonOptions) *cobra.Command {
	var printResolved bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := app.ValidateConfig(opts.configPath, opts.logger)
			if err != nil {
				return err
			}
			if printResolved {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			fmt.Printf("%s is valid\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printResolved, "print", false, "print the resolved configuration")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("netpressd %s (build %s)\n", app.Version, app.Build)
		},
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
