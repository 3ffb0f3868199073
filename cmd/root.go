package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ssincom-backend/config"
	"ssincom-backend/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "thaiinvoice",
	Short: "Back office for tax invoices, bill notes and credit notes",
	Long: `thaiinvoice serves the HTTP API used to issue Thai tax invoices,
bill notes (ใบวางบิล) and credit notes (ใบลดหนี้), and to keep the
customer, product, car and driver lists behind them.

Running it without a subcommand starts the server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and sets up logging for every subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, nil
}
