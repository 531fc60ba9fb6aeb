package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"agristock/internal/model"
)

type PurchaseRepository interface {
	Create(tx *gorm.DB, purchase *model.Purchase) error
	FindByID(id uuid.UUID) (*model.Purchase, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	UpdateWithItems(tx *gorm.DB, purchase *model.Purchase) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	FindAll(r DateRange) ([]model.Purchase, error)
	FindBySupplier(name, phone string) ([]model.Purchase, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func preloadPurchaseItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *purchaseRepo) Create(tx *gorm.DB, purchase *model.Purchase) error {
	for i := range purchase.Items {
		purchase.Items[i].ID = 0
		purchase.Items[i].Position = i
	}
	return tx.Create(purchase).Error
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := preloadPurchaseItems(r.db).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := ForUpdate(tx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_id = ?", id).Order("position ASC").Find(&purchase.Items).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) UpdateWithItems(tx *gorm.DB, purchase *model.Purchase) error {
	res := tx.Model(&model.Purchase{}).
		Where("id = ?", purchase.ID).
		Updates(map[string]interface{}{
			"date":             purchase.Date,
			"supplier_name":    purchase.SupplierName,
			"supplier_phone":   purchase.SupplierPhone,
			"supplier_address": purchase.SupplierAddress,
			"invoice_no":       purchase.InvoiceNo,
			"total_amount":     purchase.TotalAmount,
			"updated_by":       purchase.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&model.PurchaseItem{}).Error; err != nil {
		return err
	}
	for i := range purchase.Items {
		purchase.Items[i].ID = 0
		purchase.Items[i].PurchaseID = purchase.ID
		purchase.Items[i].Position = i
	}
	return tx.Create(&purchase.Items).Error
}

func (r *purchaseRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Purchase{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseRepo) FindAll(dr DateRange) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := preloadPurchaseItems(dr.apply(r.db)).Order("date DESC, created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindBySupplier(name, phone string) ([]model.Purchase, error) {
	var purchases []model.Purchase
	q := r.db
	if phone != "" {
		q = q.Where("supplier_phone = ?", phone)
	} else {
		q = q.Where("LOWER(supplier_name) = LOWER(?)", name)
	}
	err := preloadPurchaseItems(q).Order("date DESC, created_at DESC").Find(&purchases).Error
	return purchases, err
}
