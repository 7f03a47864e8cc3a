package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/synapse-notes/backend/repositories/postgres"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := postgres.NewDB(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.InitSchema(cmd.Context()); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}

			logger.Info("schema applied", zap.String("database", cfg.Database.LogString()))
			return nil
		},
	}
}
