package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ssincom-backend/database"
	"ssincom-backend/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := database.Connect(cfg.DBDriver, cfg.DSN()); err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(database.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log := logger.WithComponent("migrate")
		log.Info().Str("db", cfg.DBDriver).Msg("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
