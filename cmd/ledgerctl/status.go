package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agristock/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last invoice number, stock alerts and pending backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		last, err := application.Repos.Counters.Current(model.InvoiceCounterName)
		if err != nil {
			return err
		}
		stats, err := application.Services.Reports.GetDashboardStats()
		if err != nil {
			return err
		}
		pending, err := application.Repos.Failures.FindUnresolved(1000)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "last invoice:      INV-%04d\n", last)
		fmt.Fprintf(out, "low stock:         %d\n", stats.LowStockCount)
		fmt.Fprintf(out, "expiring soon:     %d\n", stats.ExpiringSoonCount)
		fmt.Fprintf(out, "pending backups:   %d\n", len(pending))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
