package model

// All lists every persisted entity, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Customer{},
		&Supplier{},
		&Counter{},
		&Invoice{},
		&InvoiceItem{},
		&Purchase{},
		&PurchaseItem{},
		&StockMovement{},
		&ReplicationFailure{},
	}
}
