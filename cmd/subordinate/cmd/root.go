// Package cmd implements the subordinate command line.
package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/solatis/subordinate/internal/core/config"
	"github.com/solatis/subordinate/internal/core/db"
	"github.com/solatis/subordinate/internal/core/logging"
)

// Version is the release version reported by serve.
const Version = "0.1.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "subordinate",
	Short: "Subordinate rule service",
	Long: `Subordinate applies declarative rules to UI component state: a condition
over trigger components decides which visibility, enablement and mandatory
actions are applied to target components.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path")
	pf.String("database-url", "", "database connection URL (sqlite://path or postgres://...)")
	pf.String("rules", "", "default rule file for check and apply")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "json", "log format (json, text)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration with the command's changed flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
}

// openDatabase connects to the configured database and loads the named
// queries.
func openDatabase(cfg *config.Config) (*sqlx.DB, *db.Queries, error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("database URL required (--database-url or SB_DATABASE_URL)")
	}
	database, err := db.Open(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return database, queries, nil
}

// requireMigrated fails when any embedded migration is pending.
func requireMigrated(database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			return fmt.Errorf("migration %s not applied - run 'subordinate migrate up' first", s.ID)
		}
	}
	return nil
}
