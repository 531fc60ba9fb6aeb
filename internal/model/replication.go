package model

import (
	"time"

	"gorm.io/datatypes"
)

// ReplicationFailure is the local diagnostic log for backup records that
// could not be delivered.
type ReplicationFailure struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Type       string         `gorm:"type:varchar(32);not null;index" json:"type"`
	RecordID   string         `gorm:"type:varchar(64)" json:"record_id"`
	Payload    datatypes.JSON `json:"payload"`
	Error      string         `gorm:"type:text" json:"error"`
	Attempts   int            `gorm:"not null;default:1" json:"attempts"`
	CreatedAt  time.Time      `json:"created_at"`
	ResolvedAt *time.Time     `gorm:"index" json:"resolved_at,omitempty"`
}
