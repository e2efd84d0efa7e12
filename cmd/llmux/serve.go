package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/server"
	"github.com/blueberrycongee/llmux/pkg/telemetry/logging"
)

var serveFlags struct {
	listen   string
	logLevel string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the llmux gateway",
	Long: `Start the llmux gateway with the specified configuration.

The gateway listens on the configured address and serves the
OpenAI-compatible API, routing requests across the configured providers.

Examples:
  # Start with default config
  llmux serve

  # Start with custom config
  llmux serve --config /etc/llmux/llmux.yaml

  # Override listen address
  llmux serve --listen 0.0.0.0:9000

  # Override log level
  llmux serve --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", "", "override listen address (host:port)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serveFlags.listen != "" {
		host, port, ok := config.SplitListen(serveFlags.listen)
		if !ok {
			return fmt.Errorf("invalid --listen address %q", serveFlags.listen)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(context.Background())
}
