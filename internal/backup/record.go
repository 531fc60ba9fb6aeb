package backup

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"agristock/internal/model"
)

// RecordType tags what a backup row describes
type RecordType string

const (
	TypePurchase       RecordType = "PURCHASE"
	TypeSale           RecordType = "SALE"
	TypeCustomer       RecordType = "CUSTOMER"
	TypeSupplier       RecordType = "SUPPLIER"
	TypeProduct        RecordType = "PRODUCT"
	TypePurchaseUpdate RecordType = "PURCHASE_UPDATE"
	TypeSaleUpdate     RecordType = "SALE_UPDATE"
	TypeDeletePurchase RecordType = "DELETE_PURCHASE"
	TypeDeleteSale     RecordType = "DELETE_SALE"
	TypeProductUpdate  RecordType = "PRODUCT_UPDATE"
	TypeProductDelete  RecordType = "PRODUCT_DELETE"
)

// Record is the flattened row sent to the backup target
type Record struct {
	Type        RecordType      `json:"type"`
	Date        string          `json:"date"`
	ID          string          `json:"id"`
	PartyName   string          `json:"partyName"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	ReferenceNo string          `json:"referenceNo"`
	Total       decimal.Decimal `json:"total"`
	Items       string          `json:"items"`
	RawItems    interface{}     `json:"rawItems"`
}

// Header is the column order used by Row
var Header = []interface{}{"Type", "Date", "ID", "Party", "Phone", "Address", "Reference No", "Total", "Items"}

// Row renders the record as one spreadsheet row
func (r Record) Row() []interface{} {
	return []interface{}{
		string(r.Type), r.Date, r.ID, r.PartyName, r.Phone, r.Address, r.ReferenceNo,
		r.Total.Round(2).InexactFloat64(), r.Items,
	}
}

func summarize(n int, line func(i int) (name string, qty int, price decimal.Decimal), currency string) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, qty, price := line(i)
		parts = append(parts, fmt.Sprintf("%s (%d x %s%s)", name, qty, currency, price.Round(2).String()))
	}
	return strings.Join(parts, ", ")
}

func FromInvoice(t RecordType, inv *model.Invoice, currency string) Record {
	return Record{
		Type:      t,
		Date:      inv.Date,
		ID:        inv.DisplayID,
		PartyName: inv.CustomerName,
		Phone:     inv.CustomerPhone,
		Address:   inv.CustomerAddress,
		Total:     inv.TotalAmount,
		Items: summarize(len(inv.Items), func(i int) (string, int, decimal.Decimal) {
			it := inv.Items[i]
			return it.Name, it.Quantity, it.Price
		}, currency),
		RawItems: inv.Items,
	}
}

func FromPurchase(t RecordType, p *model.Purchase, currency string) Record {
	return Record{
		Type:        t,
		Date:        p.Date,
		ID:          p.DisplayID,
		PartyName:   p.SupplierName,
		Phone:       p.SupplierPhone,
		Address:     p.SupplierAddress,
		ReferenceNo: p.InvoiceNo,
		Total:       p.TotalAmount,
		Items: summarize(len(p.Items), func(i int) (string, int, decimal.Decimal) {
			it := p.Items[i]
			return it.Name, it.Quantity, it.RateIncl
		}, currency),
		RawItems: p.Items,
	}
}

// FromProduct reports the category as the party and the purchase price as total
func FromProduct(t RecordType, p *model.Product, at time.Time) Record {
	return Record{
		Type:      t,
		Date:      at.Format(model.DateLayout),
		ID:        p.ID.String(),
		PartyName: p.Category,
		Total:     p.PurchasePrice,
		Items:     fmt.Sprintf("%s: %d %s in stock", p.Name, p.Stock, p.Unit),
	}
}

func FromCustomer(c *model.Customer, at time.Time) Record {
	return Record{
		Type:      TypeCustomer,
		Date:      at.Format(model.DateLayout),
		ID:        c.Key,
		PartyName: c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Total:     decimal.Zero,
	}
}

func FromSupplier(s *model.Supplier, at time.Time) Record {
	return Record{
		Type:      TypeSupplier,
		Date:      at.Format(model.DateLayout),
		ID:        s.Key,
		PartyName: s.Name,
		Phone:     s.Phone,
		Address:   s.Address,
		Total:     decimal.Zero,
	}
}

// Deletion marks a removed document or product by id
func Deletion(t RecordType, id string, at time.Time) Record {
	return Record{Type: t, Date: at.Format(model.DateLayout), ID: id, PartyName: "Unknown", Total: decimal.Zero}
}
