package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agristock/internal/export"
	"agristock/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger data to spreadsheets",
}

var exportSalesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Write the sales report for a date range to an xlsx file",
	Example: `  ledgerctl export sales --start 2025-04-01 --end 2026-03-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		out, _ := cmd.Flags().GetString("out")

		invoices, err := application.Services.Reports.SalesInRange(start, end)
		if err != nil {
			return err
		}
		if out == "" {
			out = export.SalesFileName(start, end)
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteSales(f, invoices); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d invoices to %s\n", len(invoices), out)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a sale or purchase as a PDF",
}

var renderInvoiceCmd = &cobra.Command{
	Use:   "invoice <id>",
	Short: "Render a sale invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid invoice id: %w", err)
		}
		inv, err := application.Services.Invoices.Get(id)
		if err != nil {
			return err
		}
		return writePDF(cmd, render.InvoiceFileName(inv), func(f *os.File) error {
			return application.Renderer.Invoice(f, inv)
		})
	},
}

var renderPurchaseCmd = &cobra.Command{
	Use:   "purchase <id>",
	Short: "Render a purchase bill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid purchase id: %w", err)
		}
		p, err := application.Services.Purchases.Get(id)
		if err != nil {
			return err
		}
		return writePDF(cmd, render.PurchaseFileName(p), func(f *os.File) error {
			return application.Renderer.Purchase(f, p)
		})
	},
}

func writePDF(cmd *cobra.Command, name string, draw func(*os.File) error) error {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		name = out
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := draw(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd, renderCmd)
	exportCmd.AddCommand(exportSalesCmd)
	renderCmd.AddCommand(renderInvoiceCmd, renderPurchaseCmd)

	exportSalesCmd.Flags().String("start", "", "First day, YYYY-MM-DD (default: no lower bound)")
	exportSalesCmd.Flags().String("end", "", "Last day, YYYY-MM-DD (default: no upper bound)")
	exportSalesCmd.Flags().StringP("out", "o", "", "Output file (default: Sales_Report_<start>_to_<end>.xlsx)")
	renderCmd.PersistentFlags().StringP("out", "o", "", "Output file (default: Invoice_<id>.pdf or Purchase_<id>.pdf)")
}
