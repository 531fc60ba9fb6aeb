package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agristock/internal/service"
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a user's password without the old one",
	Example: `  ledgerctl reset-password --email admin@example.com --password s3cret!`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" || password == "" {
			return errors.New("--email and --password are required")
		}
		if err := application.Services.Auth.SetPassword(email, password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password for %s has been reset\n", email)
		return nil
	},
}

var adjustStockCmd = &cobra.Command{
	Use:   "adjust-stock <product-id>",
	Short: "Apply a manual stock correction",
	Args:  cobra.ExactArgs(1),
	Example: `  # Write off three damaged bags
  ledgerctl adjust-stock 6f1c... --delta -3 --note "damaged in storage"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}
		delta, _ := cmd.Flags().GetInt("delta")
		note, _ := cmd.Flags().GetString("note")

		p, err := application.Services.Products.AdjustStock(id, delta, note, service.SystemActor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s stock is now %d\n", p.Name, p.Stock)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetPasswordCmd, adjustStockCmd)

	resetPasswordCmd.Flags().String("email", "", "Account email")
	resetPasswordCmd.Flags().String("password", "", "New password (at least 6 characters)")
	adjustStockCmd.Flags().Int("delta", 0, "Signed quantity to add to stock")
	adjustStockCmd.Flags().String("note", "", "Reason recorded on the stock movement")
}
