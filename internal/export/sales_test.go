package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agristock/internal/model"
)

func TestSalesFileName(t *testing.T) {
	assert.Equal(t, "Sales_Report_2025-04-01_to_2025-04-30.xlsx", SalesFileName("2025-04-01", "2025-04-30"))
	assert.Equal(t, "Sales_Report_all_to_2025-04-30.xlsx", SalesFileName("", "2025-04-30"))
}

func TestSalesRow_GrossAddsDiscountBack(t *testing.T) {
	row := SalesRow(model.Invoice{
		DisplayID:    "INV-0001",
		Date:         "2025-04-02",
		CustomerName: "Ravi",
		Discount:     decimal.NewFromInt(10),
		TotalAmount:  decimal.NewFromInt(226),
		Items:        make([]model.InvoiceItem, 3),
	})
	assert.Equal(t, []interface{}{"INV-0001", "2025-04-02", "Ravi", 3, 236.0, 10.0, 226.0, model.PaymentCash}, row)
}

func TestWriteSales(t *testing.T) {
	invoices := []model.Invoice{
		{DisplayID: "INV-0002", Date: "2025-04-03", CustomerName: "Sita", PaymentMode: model.PaymentUPI, TotalAmount: decimal.NewFromInt(100), Items: make([]model.InvoiceItem, 1)},
		{DisplayID: "INV-0001", Date: "2025-04-02", CustomerName: "Ravi", Discount: decimal.NewFromInt(10), TotalAmount: decimal.NewFromInt(226), Items: make([]model.InvoiceItem, 2)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSales(&buf, invoices))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(salesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Invoice ID", rows[0][0])
	assert.Equal(t, "Final Payable", rows[0][6])
	assert.Equal(t, []string{"INV-0002", "2025-04-03", "Sita", "1", "100", "0", "100", "UPI"}, rows[1])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "336", rows[3][4], "gross is final plus discount")
	assert.Equal(t, "10", rows[3][5])
	assert.Equal(t, "326", rows[3][6])
}
