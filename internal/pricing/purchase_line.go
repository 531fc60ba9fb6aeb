package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"agristock/internal/model"
)

// Field names a purchase line input the user can edit
type Field string

const (
	FieldQuantity      Field = "quantity"
	FieldGST           Field = "gst"
	FieldRateExcl      Field = "rate_excl"
	FieldRateIncl      Field = "rate_incl"
	FieldLineTotal     Field = "line_total"
	FieldLineTotalExcl Field = "line_total_excl"
)

var (
	ErrUnknownField  = errors.New("unknown purchase line field")
	ErrNegativeValue = errors.New("value cannot be negative")
	ErrBadQuantity   = errors.New("quantity must be a positive whole number")
	ErrTaxRate       = errors.New("tax rate must be between 0 and 28")
)

// MaxGST is the highest tax slab accepted on a line
var MaxGST = decimal.NewFromInt(28)

// RecalculatePurchaseLine applies one edited field to a purchase line and
// returns the line with the other fields derived from it, so that
// rate_incl = rate_excl × (1 + gst/100) and line_total = rate_incl × quantity
// always hold. The input line is not modified.
//
// Quantity and rate edits keep the unit rates and move the totals. A gst
// edit keeps rate_excl fixed. A total edit derives the unit rates from it.
func RecalculatePurchaseLine(item model.PurchaseItem, field Field, value decimal.Decimal) (model.PurchaseItem, error) {
	if item.GST.IsNegative() || item.GST.GreaterThan(MaxGST) {
		return item, ErrTaxRate
	}
	if item.Quantity < 0 {
		return item, ErrBadQuantity
	}
	if value.IsNegative() {
		return item, fmt.Errorf("%s: %w", field, ErrNegativeValue)
	}

	out := item
	switch field {
	case FieldQuantity:
		if !value.IsInteger() || !value.IsPositive() {
			return item, ErrBadQuantity
		}
		out.Quantity = int(value.IntPart())
		out.RateExcl = out.RateIncl.Div(TaxFactor(out.GST))
	case FieldGST:
		if value.GreaterThan(MaxGST) {
			return item, ErrTaxRate
		}
		out.GST = value
		out.RateIncl = out.RateExcl.Mul(TaxFactor(value))
	case FieldRateExcl:
		out.RateExcl = value
		out.RateIncl = value.Mul(TaxFactor(out.GST))
	case FieldRateIncl:
		out.RateIncl = value
		out.RateExcl = value.Div(TaxFactor(out.GST))
	case FieldLineTotal, FieldLineTotalExcl:
		if out.Quantity <= 0 {
			return item, ErrBadQuantity
		}
		qty := decimal.NewFromInt(int64(out.Quantity))
		if field == FieldLineTotal {
			out.RateIncl = value.Div(qty)
			out.RateExcl = out.RateIncl.Div(TaxFactor(out.GST))
		} else {
			out.RateExcl = value.Div(qty)
			out.RateIncl = out.RateExcl.Mul(TaxFactor(out.GST))
		}
	default:
		return item, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	qty := decimal.NewFromInt(int64(out.Quantity))
	out.LineTotal = out.RateIncl.Mul(qty)
	out.LineTotalExcl = out.RateExcl.Mul(qty)
	return out, nil
}

// NormalizePurchaseLine makes a submitted line self-consistent before it is
// saved. The tax-inclusive rate wins unless only the exclusive one was sent.
func NormalizePurchaseLine(item model.PurchaseItem) (model.PurchaseItem, error) {
	if item.Quantity <= 0 {
		return item, ErrBadQuantity
	}
	if item.RateIncl.IsZero() && !item.RateExcl.IsZero() {
		return RecalculatePurchaseLine(item, FieldRateExcl, item.RateExcl)
	}
	return RecalculatePurchaseLine(item, FieldRateIncl, item.RateIncl)
}
