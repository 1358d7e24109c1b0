// Package cli implements the accounts command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lesechos/accounts/internal/config"
	"github.com/lesechos/accounts/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "accounts",
	Short: "User accounts and authentication service",
	Long: `accounts runs the user directory and authentication API.

Configuration is read from --config, ./config.yaml or /etc/accounts/config.yaml,
then overridden by ACCOUNTS_* environment variables.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/accounts/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

// loadConfig reads configuration and sets up the default logger.
func loadConfig() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("accounts"))
	logging.SetDefault(logger)

	return cfg, logger, nil
}
