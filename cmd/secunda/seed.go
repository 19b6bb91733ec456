package main

import (
	"github.com/spf13/cobra"

	"github.com/Namra404/secunda/config"
	activityrepo "github.com/Namra404/secunda/internal/repositories/activity"
	buildingrepo "github.com/Namra404/secunda/internal/repositories/building"
	organizationrepo "github.com/Namra404/secunda/internal/repositories/organization"
	"github.com/Namra404/secunda/internal/logging"
	"github.com/Namra404/secunda/internal/seed"
	activityservice "github.com/Namra404/secunda/internal/services/activity"
	buildingservice "github.com/Namra404/secunda/internal/services/building"
	organizationservice "github.com/Namra404/secunda/internal/services/organization"
	"github.com/Namra404/secunda/pkg/database"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty directory with demo data",
		Long:  "Fill an empty directory with the bundled demo dataset, or with a YAML dataset given by --file. Nothing is written when buildings already exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := seed.Demo()
			if file != "" {
				dataset, err = seed.LoadFile(file)
			}
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, syncLogger, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
			if err != nil {
				return err
			}
			defer syncLogger()

			ctx := cmd.Context()
			db, err := database.Connect(ctx, cfg.DatabaseConfig(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.NewMigrationService(logger, cfg.MigrationConfig()).MigratePostgres(db.DB.DB, cfg.DatabaseName); err != nil {
				return err
			}

			activities := activityrepo.NewRepository(db, logger)
			buildings := buildingrepo.NewRepository(db, logger)
			organizations := organizationrepo.NewRepository(db, activities, buildings, logger)

			_, err = seed.NewSeeder(
				db,
				buildingservice.NewService(buildings, logger),
				activityservice.NewService(activities, logger),
				organizationservice.NewService(organizations, logger),
				logger,
			).Run(ctx, dataset)
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML dataset to load instead of the bundled demo data")
	return cmd
}
