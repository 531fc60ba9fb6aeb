package model

// InvoiceCounterName is the counter row backing invoice numbers
const InvoiceCounterName = "invoice"

// Counter is a named sequence. It is only incremented inside the
// transaction that consumes the value, so a rollback also rolls it back.
type Counter struct {
	Name  string `gorm:"primaryKey;type:varchar(50)" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}
