package model

import "time"

// Customer and Supplier are keyed by a derived identity (phone, else the
// normalized name) so repeated saves merge into one record.

type Customer struct {
	Key       string     `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Phone     string     `gorm:"type:varchar(20)" json:"phone"`
	Address   string     `gorm:"type:text" json:"address"`
	LastVisit *time.Time `json:"last_visit,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Supplier struct {
	Key          string     `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`
	Address      string     `gorm:"type:text" json:"address"`
	LastPurchase *time.Time `json:"last_purchase,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
