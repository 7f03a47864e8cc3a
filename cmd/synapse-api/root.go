package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/synapse-notes/backend/config"
	"github.com/synapse-notes/backend/internal/observability"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "synapse-api",
		Short:         "Synapse Notes API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := newServeCommand()
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCommand())

	// Running the binary without a subcommand serves
	rootCmd.RunE = serveCmd.RunE

	return rootCmd
}

// loadRuntime reads configuration and builds the process logger
func loadRuntime(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(
		zap.String("service", "synapse-api"),
		zap.String("environment", cfg.Environment),
		zap.String("version", cfg.Version),
	), nil
}
