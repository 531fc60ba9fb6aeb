package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"agristock/internal/model"
)

// DateRange filters documents by calendar date, both ends inclusive.
// Empty bounds are open.
type DateRange struct {
	Start string
	End   string
}

func (d DateRange) apply(q *gorm.DB) *gorm.DB {
	if d.Start != "" {
		q = q.Where("date >= ?", d.Start)
	}
	if d.End != "" {
		q = q.Where("date <= ?", d.End)
	}
	return q
}

type InvoiceRepository interface {
	Create(tx *gorm.DB, invoice *model.Invoice) error
	FindByID(id uuid.UUID) (*model.Invoice, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	UpdateWithItems(tx *gorm.DB, invoice *model.Invoice) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	FindAll(r DateRange) ([]model.Invoice, error)
	FindByCustomer(name, phone string) ([]model.Invoice, error)
}

type invoiceRepo struct {
	db *gorm.DB
}

func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db}
}

func preloadInvoiceItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Create inserts the header and its items in one statement batch
func (r *invoiceRepo) Create(tx *gorm.DB, invoice *model.Invoice) error {
	for i := range invoice.Items {
		invoice.Items[i].ID = 0
		invoice.Items[i].Position = i
	}
	return tx.Create(invoice).Error
}

func (r *invoiceRepo) FindByID(id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := preloadInvoiceItems(r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// LockByID loads the persisted invoice with its items and locks the header row
func (r *invoiceRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := ForUpdate(tx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("invoice_id = ?", id).Order("position ASC").Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateWithItems rewrites the header fields and replaces every line item
func (r *invoiceRepo) UpdateWithItems(tx *gorm.DB, invoice *model.Invoice) error {
	res := tx.Model(&model.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"date":             invoice.Date,
			"customer_name":    invoice.CustomerName,
			"customer_phone":   invoice.CustomerPhone,
			"customer_address": invoice.CustomerAddress,
			"discount":         invoice.Discount,
			"payment_mode":     invoice.PaymentMode,
			"total_amount":     invoice.TotalAmount,
			"updated_by":       invoice.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range invoice.Items {
		invoice.Items[i].ID = 0
		invoice.Items[i].InvoiceID = invoice.ID
		invoice.Items[i].Position = i
	}
	return tx.Create(&invoice.Items).Error
}

// Delete soft-deletes the header. Items stay for history.
func (r *invoiceRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Invoice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepo) FindAll(dr DateRange) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := preloadInvoiceItems(dr.apply(r.db)).Order("sequence DESC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) FindByCustomer(name, phone string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	q := r.db
	if phone != "" {
		q = q.Where("customer_phone = ?", phone)
	} else {
		q = q.Where("LOWER(customer_name) = LOWER(?)", name)
	}
	err := preloadInvoiceItems(q).Order("sequence DESC").Find(&invoices).Error
	return invoices, err
}
