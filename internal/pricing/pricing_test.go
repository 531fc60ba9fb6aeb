package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agristock/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Sub(got).Abs().LessThanOrEqual(d("0.01")), "want %s, got %s", want, got)
}

func TestDecompose(t *testing.T) {
	l := Decompose(d("118"), 2, d("18"))
	assertAmount(t, "236.00", l.Total)
	assertAmount(t, "200.00", l.Base)
	assertAmount(t, "36.00", l.Tax)
}

func TestDecompose_ZeroTax(t *testing.T) {
	l := Decompose(d("50"), 3, decimal.Zero)
	assert.True(t, l.Total.Equal(d("150")))
	assert.True(t, l.Base.Equal(d("150")))
	assert.True(t, l.Tax.IsZero())
}

func TestInvoiceTotals_SumsComponentsPerLine(t *testing.T) {
	items := []model.InvoiceItem{
		{Price: d("118"), Quantity: 2, GST: d("18")},
		{Price: d("105"), Quantity: 1, GST: d("5")},
		{Price: d("112"), Quantity: 3, GST: d("12")},
	}
	totals := InvoiceTotals(items, d("10"))

	assertAmount(t, "677.00", totals.Gross)
	assertAmount(t, "600.00", totals.Base)
	assertAmount(t, "77.00", totals.Tax)
	assertAmount(t, "667.00", totals.Final)
	assert.True(t, totals.Base.Add(totals.Tax).Sub(totals.Gross).Abs().LessThan(d("0.0000001")))
}

func TestInvoiceTotals_Empty(t *testing.T) {
	totals := InvoiceTotals(nil, decimal.Zero)
	assert.True(t, totals.Final.IsZero())
}

func TestLineProfit_UsesSnapshotThenFallback(t *testing.T) {
	withSnapshot := model.InvoiceItem{Price: d("120"), Quantity: 2, CostPrice: decimal.NewNullDecimal(d("100"))}
	withoutSnapshot := model.InvoiceItem{Price: d("120"), Quantity: 2}

	assertAmount(t, "40", LineProfit(withSnapshot, d("90")))
	assertAmount(t, "60", LineProfit(withoutSnapshot, d("90")))
	assertAmount(t, "180", LineCost(withoutSnapshot, d("90")))
}

func TestRoundAndFormat(t *testing.T) {
	assert.Equal(t, "₹236.00", Format("₹", d("236")))
	assert.Equal(t, "33.33", Round(d("100").Div(d("3"))).StringFixed(2))
}

func TestRecalculatePurchaseLine(t *testing.T) {
	item := model.PurchaseItem{Quantity: 10, GST: d("5")}

	item, err := RecalculatePurchaseLine(item, FieldRateExcl, d("100"))
	require.NoError(t, err)
	assertAmount(t, "105.00", item.RateIncl)
	assertAmount(t, "1050.00", item.LineTotal)
	assertAmount(t, "1000.00", item.LineTotalExcl)

	item, err = RecalculatePurchaseLine(item, FieldGST, d("12"))
	require.NoError(t, err)
	assert.True(t, item.RateExcl.Equal(d("100")), "rate excl must not move on a gst edit")
	assertAmount(t, "112.00", item.RateIncl)
	assertAmount(t, "1120.00", item.LineTotal)
}

func TestRecalculatePurchaseLine_Fields(t *testing.T) {
	base := model.PurchaseItem{Quantity: 10, GST: d("5"), RateExcl: d("100"), RateIncl: d("105")}

	tests := []struct {
		name          string
		field         Field
		value         string
		wantRateExcl  string
		wantRateIncl  string
		wantTotal     string
		wantTotalExcl string
	}{
		{"quantity", FieldQuantity, "4", "100", "105", "420", "400"},
		{"rate incl", FieldRateIncl, "210", "200", "210", "2100", "2000"},
		{"line total", FieldLineTotal, "2100", "200", "210", "2100", "2000"},
		{"line total excl", FieldLineTotalExcl, "500", "50", "52.5", "525", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecalculatePurchaseLine(base, tt.field, d(tt.value))
			require.NoError(t, err)
			assertAmount(t, tt.wantRateExcl, got.RateExcl)
			assertAmount(t, tt.wantRateIncl, got.RateIncl)
			assertAmount(t, tt.wantTotal, got.LineTotal)
			assertAmount(t, tt.wantTotalExcl, got.LineTotalExcl)
			assertAmount(t, tt.wantRateIncl, got.RateExcl.Mul(TaxFactor(got.GST)))
		})
	}
}

func TestRecalculatePurchaseLine_Rejects(t *testing.T) {
	base := model.PurchaseItem{Quantity: 10, GST: d("5"), RateExcl: d("100"), RateIncl: d("105")}

	_, err := RecalculatePurchaseLine(base, FieldQuantity, d("1.5"))
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = RecalculatePurchaseLine(base, FieldRateExcl, d("-1"))
	assert.ErrorIs(t, err, ErrNegativeValue)

	_, err = RecalculatePurchaseLine(base, FieldGST, d("40"))
	assert.ErrorIs(t, err, ErrTaxRate)

	_, err = RecalculatePurchaseLine(base, Field("discount"), d("1"))
	assert.ErrorIs(t, err, ErrUnknownField)

	zero := base
	zero.Quantity = 0
	_, err = RecalculatePurchaseLine(zero, FieldLineTotal, d("100"))
	assert.ErrorIs(t, err, ErrBadQuantity)
}

func TestRecalculatePurchaseLine_RejectsBadStoredLine(t *testing.T) {
	tests := []struct {
		name  string
		item  model.PurchaseItem
		field Field
		want  error
	}{
		{"gst wiping out the tax factor", model.PurchaseItem{Quantity: 1, GST: d("-100")}, FieldRateIncl, ErrTaxRate},
		{"negative gst", model.PurchaseItem{Quantity: 1, GST: d("-5")}, FieldRateExcl, ErrTaxRate},
		{"gst above the top slab", model.PurchaseItem{Quantity: 1, GST: d("40")}, FieldLineTotal, ErrTaxRate},
		{"negative quantity", model.PurchaseItem{Quantity: -3, GST: d("5")}, FieldRateIncl, ErrBadQuantity},
		{"negative quantity on a gst edit", model.PurchaseItem{Quantity: -3, GST: d("5")}, FieldGST, ErrBadQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() {
				_, err = RecalculatePurchaseLine(tt.item, tt.field, d("100"))
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizePurchaseLine(t *testing.T) {
	got, err := NormalizePurchaseLine(model.PurchaseItem{Quantity: 2, GST: d("18"), RateExcl: d("100")})
	require.NoError(t, err)
	assertAmount(t, "118", got.RateIncl)
	assertAmount(t, "236", got.LineTotal)

	got, err = NormalizePurchaseLine(model.PurchaseItem{Quantity: 2, GST: d("18"), RateIncl: d("118"), RateExcl: d("1")})
	require.NoError(t, err)
	assertAmount(t, "100", got.RateExcl)
}
