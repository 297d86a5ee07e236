package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/langpatrol/internal/api"
	"github.com/user/langpatrol/internal/config"
	"github.com/user/langpatrol/internal/engine"
	"github.com/user/langpatrol/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local analyze dev server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := newLogger(cfg.Server.LogLevel, cfg.LogRotation)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			logger.Info("starting langpatrol server",
				zap.String("version", version.Short()),
				zap.String("host", cfg.Server.Host),
				zap.Int("port", cfg.Server.Port),
			)

			analyzer := engine.NewAnalyzer(logger)
			server := api.NewServer(api.ServerDeps{Analyzer: analyzer, Logger: logger})

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			return server.Run(addr)
		},
	}
}
