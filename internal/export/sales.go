// Package export writes report data to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"agristock/internal/model"
)

const salesSheet = "Sales Report"

var salesHeader = []interface{}{
	"Invoice ID", "Date", "Customer", "Items Count",
	"Total Amount (Incl)", "Discount", "Final Payable", "Payment Mode",
}

// SalesFileName names the export for a date range
func SalesFileName(start, end string) string {
	if start == "" {
		start = "all"
	}
	if end == "" {
		end = "all"
	}
	return fmt.Sprintf("Sales_Report_%s_to_%s.xlsx", start, end)
}

// SalesRow flattens one invoice. The stored total is already net of the
// discount, so the gross column adds it back.
func SalesRow(inv model.Invoice) []interface{} {
	mode := inv.PaymentMode
	if mode == "" {
		mode = model.PaymentCash
	}
	return []interface{}{
		inv.DisplayID,
		inv.Date,
		inv.CustomerName,
		len(inv.Items),
		amount(inv.TotalAmount.Add(inv.Discount)),
		amount(inv.Discount),
		amount(inv.TotalAmount),
		mode,
	}
}

// WriteSales writes the sales report workbook for invoices to w
func WriteSales(w io.Writer, invoices []model.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(salesSheet, "A1", &salesHeader); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6ECE6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(salesSheet, "A1", "H1", bold); err != nil {
		return err
	}

	gross, discount, final := decimal.Zero, decimal.Zero, decimal.Zero
	for i, inv := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := SalesRow(inv)
		if err := f.SetSheetRow(salesSheet, cell, &row); err != nil {
			return err
		}
		gross = gross.Add(inv.TotalAmount.Add(inv.Discount))
		discount = discount.Add(inv.Discount)
		final = final.Add(inv.TotalAmount)
	}

	totalRow := len(invoices) + 2
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	totals := []interface{}{"Total", "", "", "", amount(gross), amount(discount), amount(final), ""}
	if err := f.SetSheetRow(salesSheet, cell, &totals); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(8, totalRow)
	if err := f.SetCellStyle(salesSheet, cell, last, bold); err != nil {
		return err
	}

	if err := f.SetColWidth(salesSheet, "A", "H", 18); err != nil {
		return err
	}
	return f.Write(w)
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
