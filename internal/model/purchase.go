package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is an inbound stock entry from a supplier.
type Purchase struct {
	BaseModel
	DisplayID       string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"display_id"`
	Date            string          `gorm:"type:varchar(10);index;not null" json:"date" validate:"required,datetime=2006-01-02"`
	SupplierName    string          `gorm:"type:varchar(255);not null" json:"supplier_name" validate:"required"`
	SupplierPhone   string          `gorm:"type:varchar(20)" json:"supplier_phone"`
	SupplierAddress string          `gorm:"type:text" json:"supplier_address"`
	InvoiceNo       string          `gorm:"type:varchar(64)" json:"invoice_no"`
	Items           []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items" validate:"required,min=1,dive"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"total_amount"`
}

// PurchaseItem keeps both rate forms. A nil ProductID marks a product that
// does not exist yet; it is created when the purchase is saved.
type PurchaseItem struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	PurchaseID uuid.UUID  `gorm:"type:uuid;index;not null" json:"-"`
	Position   int        `gorm:"not null" json:"-"`
	ProductID  *uuid.UUID `gorm:"type:uuid;index" json:"product_id"`

	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category string `gorm:"type:varchar(100)" json:"category"`
	Unit     string `gorm:"type:varchar(20)" json:"unit"`

	GST           decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"gst" validate:"gte=0,lte=28"`
	RateExcl      decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"rate_excl" validate:"gte=0"`
	RateIncl      decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"rate_incl" validate:"gte=0"`
	Quantity      int             `gorm:"not null" json:"quantity" validate:"gt=0"`
	LineTotal     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"line_total"`
	LineTotalExcl decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"line_total_excl"`
}

// IsNewProduct reports whether saving this line creates a product
func (i *PurchaseItem) IsNewProduct() bool {
	return i.ProductID == nil
}
