package main

import (
	"github.com/spf13/cobra"

	"github.com/Namra404/secunda/config"
	"github.com/Namra404/secunda/internal/logging"
	"github.com/Namra404/secunda/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	var target uint

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, syncLogger, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
			if err != nil {
				return err
			}
			defer syncLogger()

			db, err := database.Connect(cmd.Context(), cfg.DatabaseConfig(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			migrations := cfg.MigrationConfig()
			if cmd.Flags().Changed("version") {
				migrations.Version = target
			}
			return database.NewMigrationService(logger, migrations).MigratePostgres(db.DB.DB, cfg.DatabaseName)
		},
	}

	cmd.Flags().UintVar(&target, "version", 0, "Migrate to this schema version instead of the latest (overrides DB_MIGRATION_VERSION)")
	return cmd
}
