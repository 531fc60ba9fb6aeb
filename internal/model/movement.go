package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// Movement reasons
const (
	ReasonSale           = "SALE"
	ReasonSaleReturn     = "SALE_RETURN"
	ReasonPurchase       = "PURCHASE"
	ReasonPurchaseReturn = "PURCHASE_RETURN"
	ReasonAdjustment     = "ADJUSTMENT"
)

// StockMovement is the audit trail written for every stock delta the ledger
// applies. It is informational; Product.Stock stays the authoritative total.
type StockMovement struct {
	BaseModel
	ProductID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Type       MovementType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity   int          `gorm:"not null" json:"quantity"`
	Reason     string       `gorm:"type:varchar(20);not null" json:"reason"`
	DocumentID string       `gorm:"type:varchar(64);index" json:"document_id,omitempty"`
	StockAfter int          `gorm:"not null" json:"stock_after"`
	Note       string       `json:"note,omitempty"`
}
