package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agristock/internal/app"
	"agristock/internal/config"
	"agristock/internal/logger"
)

var version = "1.0.0"

// application is built once per invocation by the root pre-run hook
var application *app.App

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Maintenance commands for the AgriStock ledger",
	Long: `ledgerctl runs the maintenance jobs of the AgriStock ledger against the
database configured by the DATABASE_URL or DB_* environment variables.

It can migrate the schema, push a full backup, retry failed backup
deliveries, export sales, render documents and reset a password.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		application, err = app.Build(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application == nil {
			return
		}
		application.Dispatcher.Wait()
		if sqlDB, err := application.DB.DB(); err == nil {
			sqlDB.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// the pre-run hook already migrated
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
