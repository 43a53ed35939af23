package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/logging"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(a.cfg, a.logger)
		},
	}
}

func migrate(cfg *config.Config, logger *zap.Logger) error {
	connStr := cfg.Database.ConnectionString()
	logger.Info("Running migrations",
		zap.String("database", logging.SanitizeConnectionString(connStr)))

	sqlDB, err := database.OpenSQL(connStr)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
