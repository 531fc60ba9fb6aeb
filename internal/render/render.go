// Package render draws finalized invoices and purchases as PDF documents.
// It only reads the saved record; totals come from the record itself.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"agristock/internal/model"
	"agristock/internal/pricing"
)

// ShopProfile is the letterhead printed on every document
type ShopProfile struct {
	Name     string
	Tagline  string
	Address  string
	Contact  string
	Currency string
}

type Renderer struct {
	shop     ShopProfile
	compress bool
}

func New(shop ShopProfile) *Renderer {
	return &Renderer{shop: shop, compress: true}
}

type row struct {
	name     string
	qty      int
	rateExcl decimal.Decimal
	gst      decimal.Decimal
	gstAmt   decimal.Decimal
	total    decimal.Decimal
}

type document struct {
	title      string
	number     string
	date       string
	reference  string
	partyLabel string
	party      []string
	rows       []row
	subtotal   decimal.Decimal
	tax        decimal.Decimal
	discount   decimal.Decimal
	grand      decimal.Decimal
	footer     string
}

// InvoiceFileName is the download name used for an invoice PDF
func InvoiceFileName(inv *model.Invoice) string {
	return fmt.Sprintf("Invoice_%s.pdf", inv.DisplayID)
}

// PurchaseFileName is the download name used for a purchase PDF
func PurchaseFileName(p *model.Purchase) string {
	return fmt.Sprintf("Purchase_%s.pdf", p.DisplayID)
}

func (r *Renderer) Invoice(w io.Writer, inv *model.Invoice) error {
	totals := pricing.InvoiceTotals(inv.Items, inv.Discount)
	doc := document{
		title:      "TAX INVOICE",
		number:     inv.DisplayID,
		date:       inv.Date,
		partyLabel: "Bill To",
		party:      nonEmpty(inv.CustomerName, inv.CustomerPhone, inv.CustomerAddress),
		subtotal:   totals.Base,
		tax:        totals.Tax,
		discount:   inv.Discount,
		grand:      inv.TotalAmount,
		footer:     "Payment mode: " + inv.PaymentMode + ". Thank you for your business!",
	}
	for _, it := range inv.Items {
		l := pricing.InvoiceLine(it)
		doc.rows = append(doc.rows, row{
			name:     it.Name,
			qty:      it.Quantity,
			rateExcl: l.Base.Div(decimal.NewFromInt(int64(max(it.Quantity, 1)))),
			gst:      it.GST,
			gstAmt:   l.Tax,
			total:    l.Total,
		})
	}
	return r.draw(w, doc)
}

func (r *Renderer) Purchase(w io.Writer, p *model.Purchase) error {
	totals := pricing.PurchaseTotals(p.Items)
	doc := document{
		title:      "PURCHASE ENTRY",
		number:     p.DisplayID,
		date:       p.Date,
		reference:  p.InvoiceNo,
		partyLabel: "Supplier",
		party:      nonEmpty(p.SupplierName, p.SupplierPhone, p.SupplierAddress),
		subtotal:   totals.Base,
		tax:        totals.Tax,
		discount:   decimal.Zero,
		grand:      p.TotalAmount,
	}
	for _, it := range p.Items {
		doc.rows = append(doc.rows, row{
			name:     it.Name,
			qty:      it.Quantity,
			rateExcl: it.RateExcl,
			gst:      it.GST,
			gstAmt:   it.LineTotal.Sub(it.LineTotalExcl),
			total:    it.LineTotal,
		})
	}
	return r.draw(w, doc)
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 70, "L"},
	{"Qty", 18, "R"},
	{"Rate (excl)", 28, "R"},
	{"GST %", 18, "R"},
	{"GST Amt", 26, "R"},
	{"Total", 30, "R"},
}

func (r *Renderer) draw(w io.Writer, doc document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle(doc.title+" "+doc.number, true)
	pdf.SetAuthor(r.shop.Name, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string {
		return tr(currencyLabel(r.shop.Currency) + pricing.Round(d).StringFixed(2))
	}

	// letterhead
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 9, tr(r.shop.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range nonEmpty(r.shop.Tagline, r.shop.Address, r.shop.Contact) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, doc.title, "B", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(100, 6, doc.partyLabel, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.party {
		pdf.CellFormat(100, 5, tr(line), "", 1, "L", false, 0, "")
	}
	bottom := pdf.GetY()

	pdf.SetXY(120, top)
	meta := [][2]string{{"No.", doc.number}, {"Date", doc.date}}
	if doc.reference != "" {
		meta = append(meta, [2]string{"Ref.", doc.reference})
	}
	for _, m := range meta {
		pdf.SetX(120)
		pdf.CellFormat(25, 6, m[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, tr(m[1]), "", 1, "R", false, 0, "")
	}
	if pdf.GetY() < bottom {
		pdf.SetY(bottom)
	}
	pdf.Ln(5)

	// item table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 236, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, rw := range doc.rows {
		cells := []string{
			tr(rw.name),
			fmt.Sprintf("%d", rw.qty),
			money(rw.rateExcl),
			rw.gst.String(),
			money(rw.gstAmt),
			money(rw.total),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// totals panel
	totals := [][2]string{
		{"Subtotal (excl. GST)", money(doc.subtotal)},
		{"GST", money(doc.tax)},
	}
	if doc.discount.IsPositive() {
		totals = append(totals, [2]string{"Discount", "-" + money(doc.discount)})
	}
	for _, t := range totals {
		pdf.SetX(110)
		pdf.CellFormat(50, 6, t[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, t[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(110)
	pdf.CellFormat(50, 8, "Grand Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, money(doc.grand), "T", 1, "R", false, 0, "")

	if doc.footer != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(doc.footer), "", "C", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render %s: %w", doc.number, err)
	}
	return pdf.Output(w)
}

// currencyLabel maps symbols the core PDF fonts cannot draw to text
func currencyLabel(symbol string) string {
	switch symbol {
	case "₹":
		return "Rs. "
	case "":
		return ""
	}
	return symbol
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
