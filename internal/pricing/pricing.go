// Package pricing holds the tax-inclusive price arithmetic shared by the
// ledger and the reports. Nothing here touches storage; amounts are kept at
// full precision and only rounded by Round when they are shown to a person.
package pricing

import (
	"github.com/shopspring/decimal"

	"agristock/internal/model"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Line is the decomposition of one tax-inclusive line total
type Line struct {
	Total decimal.Decimal `json:"total"`
	Base  decimal.Decimal `json:"base"`
	Tax   decimal.Decimal `json:"tax"`
}

// Totals aggregates a document. Base and Tax are summed per line, never
// decomposed from the gross, so mixed tax rates do not compound rounding.
type Totals struct {
	Base     decimal.Decimal `json:"base"`
	Tax      decimal.Decimal `json:"tax"`
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
	Final    decimal.Decimal `json:"final"`
}

// TaxFactor returns 1 + gst/100
func TaxFactor(gst decimal.Decimal) decimal.Decimal {
	return one.Add(gst.Div(hundred))
}

// Decompose splits price × qty (tax inclusive) into base and tax
func Decompose(price decimal.Decimal, qty int, gst decimal.Decimal) Line {
	total := price.Mul(decimal.NewFromInt(int64(qty)))
	base := total.Div(TaxFactor(gst))
	return Line{Total: total, Base: base, Tax: total.Sub(base)}
}

// InvoiceLine decomposes a sale line
func InvoiceLine(item model.InvoiceItem) Line {
	return Decompose(item.Price, item.Quantity, item.GST)
}

// InvoiceTotals computes the stored total and its breakdown for a sale.
func InvoiceTotals(items []model.InvoiceItem, discount decimal.Decimal) Totals {
	t := Totals{Base: decimal.Zero, Tax: decimal.Zero, Gross: decimal.Zero, Discount: discount}
	for _, item := range items {
		l := InvoiceLine(item)
		t.Base = t.Base.Add(l.Base)
		t.Tax = t.Tax.Add(l.Tax)
		t.Gross = t.Gross.Add(l.Total)
	}
	t.Final = t.Gross.Sub(discount)
	return t
}

// PurchaseTotals aggregates purchase lines by their tax-inclusive rate.
func PurchaseTotals(items []model.PurchaseItem) Totals {
	t := Totals{Base: decimal.Zero, Tax: decimal.Zero, Gross: decimal.Zero, Discount: decimal.Zero}
	for _, item := range items {
		l := Decompose(item.RateIncl, item.Quantity, item.GST)
		t.Base = t.Base.Add(l.Base)
		t.Tax = t.Tax.Add(l.Tax)
		t.Gross = t.Gross.Add(l.Total)
	}
	t.Final = t.Gross
	return t
}

// UnitCost returns the cost snapshot stored on the line, or fallback (the
// product's current purchase price) when the line has none.
func UnitCost(item model.InvoiceItem, fallback decimal.Decimal) decimal.Decimal {
	if item.CostPrice.Valid {
		return item.CostPrice.Decimal
	}
	return fallback
}

// LineCost is unit cost × quantity for a sale line
func LineCost(item model.InvoiceItem, fallback decimal.Decimal) decimal.Decimal {
	return UnitCost(item, fallback).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// LineProfit is (selling price - unit cost) × quantity
func LineProfit(item model.InvoiceItem, fallback decimal.Decimal) decimal.Decimal {
	return item.Price.Sub(UnitCost(item, fallback)).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Round rounds to two fraction digits for display
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with a currency symbol, e.g. "₹236.00"
func Format(currency string, d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}
