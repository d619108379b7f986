package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leandroluk/querykit/config"
	"github.com/leandroluk/querykit/internal/logger"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "querykit",
	Short: "Query-string driven search over SQL and document stores",
	Long: `querykit compiles flat query-string parameters (field filters, free-text
filter, projection, relations, sort and page window) into structured queries
and answers them with look-ahead pagination.

Configuration is read from the --config YAML file and QUERYKIT_* environment
variables (e.g. QUERYKIT_DATABASE_DRIVER=postgres).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
}

// loadConfig loads the configuration and installs the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, config.EnvPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	slog.SetDefault(log)
	return cfg, log, nil
}
