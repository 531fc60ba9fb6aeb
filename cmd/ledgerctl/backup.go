package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errBackupOff = errors.New("backup is off, set BACKUP_MODE to webhook or sheets")

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Replicate ledger records to the configured backup target",
}

var backupSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Send every customer, supplier, product, purchase and sale to the backup",
	Example: `  # Full sync to the sheet named by BACKUP_SHEET_URL
  BACKUP_MODE=sheets ledgerctl backup sync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Syncer == nil {
			return errBackupOff
		}
		out := cmd.OutOrStdout()
		sent, err := application.Syncer.Run(cmd.Context(), func(msg string) {
			fmt.Fprintln(out, msg)
		})
		if err != nil {
			return fmt.Errorf("sync stopped after %d records: %w", sent, err)
		}
		fmt.Fprintf(out, "synced %d records\n", sent)
		return nil
	},
}

var backupRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Re-send backup records whose delivery failed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !application.Dispatcher.Enabled() {
			return errBackupOff
		}
		limit, _ := cmd.Flags().GetInt("limit")
		delivered, err := application.Dispatcher.RetryFailures(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "delivered %d pending records\n", delivered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupSyncCmd, backupRetryCmd)

	backupRetryCmd.Flags().Int("limit", 100, "Maximum number of failures to retry")
}
