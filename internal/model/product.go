package model

import "github.com/shopspring/decimal"

// Defaults applied when a purchase line creates a product implicitly
const (
	DefaultCategory = "Fertilizer"
	DefaultUnit     = "Bag"
	DefaultMinStock = 10
)

// DefaultGST is the tax rate assumed when a line does not carry one
var DefaultGST = decimal.NewFromInt(5)

type Product struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Category string          `gorm:"type:varchar(100)" json:"category"`
	Unit     string          `gorm:"type:varchar(20)" json:"unit"`
	GST      decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"gst" validate:"gte=0,lte=28"`

	// Stock is the running total maintained by the stock ledger. It may go negative.
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"purchase_price" validate:"gte=0"`
	MinStock      int             `gorm:"not null;default:0" json:"min_stock" validate:"gte=0"`
	ExpDate       string          `gorm:"type:varchar(10)" json:"exp_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// IsLowStock reports whether stock has fallen to the reorder threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
