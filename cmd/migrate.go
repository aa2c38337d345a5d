package cmd

import (
	"bitwise74/taskcamp/db"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the schema and seeds permissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		conn, err := db.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database, %w", err)
		}

		if err := db.Migrate(conn); err != nil {
			return err
		}

		zap.L().Info("Database migrated", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
