package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment modes
const (
	PaymentCash   = "Cash"
	PaymentCredit = "Credit"
	PaymentUPI    = "UPI"
)

// Invoice is a sale. Customer fields and line snapshots are copied at save
// time and never follow later changes to the directory or product records.
type Invoice struct {
	BaseModel
	DisplayID       string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"display_id"`
	Sequence        int64           `gorm:"not null" json:"sequence"`
	Date            string          `gorm:"type:varchar(10);index;not null" json:"date" validate:"required,datetime=2006-01-02"`
	CustomerName    string          `gorm:"type:varchar(255);not null" json:"customer_name" validate:"required"`
	CustomerPhone   string          `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerAddress string          `gorm:"type:text" json:"customer_address"`
	Items           []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items" validate:"required,min=1,dive"`
	Discount        decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"discount" validate:"gte=0"`
	PaymentMode     string          `gorm:"type:varchar(20);not null;default:'Cash'" json:"payment_mode" validate:"omitempty,oneof=Cash Credit UPI"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"total_amount"`
}

type InvoiceItem struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	InvoiceID uuid.UUID  `gorm:"type:uuid;index;not null" json:"-"`
	Position  int        `gorm:"not null" json:"-"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id" validate:"required"`

	// Snapshot taken when the item was added to the bill. Blank fields are
	// filled from the product when the invoice is saved.
	Name      string              `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string              `gorm:"type:varchar(20)" json:"unit"`
	GST       decimal.Decimal     `gorm:"type:numeric;not null;default:0" json:"gst" validate:"gte=0,lte=28"`
	CostPrice decimal.NullDecimal `gorm:"type:numeric" json:"cost_price"`

	Price    decimal.Decimal `gorm:"type:numeric;not null" json:"price" validate:"gte=0"`
	Quantity int             `gorm:"not null" json:"quantity" validate:"gt=0"`

	// GSTSet reports that the caller chose the tax rate, so a zero GST is
	// kept instead of being taken from the product
	GSTSet bool `gorm:"-" json:"-"`
}

// UnmarshalJSON records whether "gst" was present in the request
func (it *InvoiceItem) UnmarshalJSON(data []byte) error {
	type plain InvoiceItem
	aux := struct {
		*plain
		GST *decimal.Decimal `json:"gst"`
	}{plain: (*plain)(it)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.GST != nil {
		it.GST = *aux.GST
		it.GSTSet = true
	}
	return nil
}
