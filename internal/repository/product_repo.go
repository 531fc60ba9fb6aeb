package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agristock/internal/model"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindMany(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	Update(tx *gorm.DB, product *model.Product) error
	AddStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) error
	UpdatePricing(tx *gorm.DB, id uuid.UUID, purchasePrice, gst decimal.Decimal, updatedBy string) error
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return r.conn(tx).Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindMany reads the listed products without locking them
func (r *productRepo) FindMany(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.conn(tx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// LockByID reads a product and holds its row lock until tx ends
func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := ForUpdate(tx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update writes the descriptive fields. Stock is never written here.
func (r *productRepo) Update(tx *gorm.DB, product *model.Product) error {
	return r.conn(tx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":           product.Name,
			"category":       product.Category,
			"unit":           product.Unit,
			"gst":            product.GST,
			"purchase_price": product.PurchasePrice,
			"min_stock":      product.MinStock,
			"exp_date":       product.ExpDate,
			"updated_by":     product.UpdatedBy,
		}).Error
}

// AddStock applies a signed delta relative to the stored value
func (r *productRepo) AddStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) UpdatePricing(tx *gorm.DB, id uuid.UUID, purchasePrice, gst decimal.Decimal, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"purchase_price": purchasePrice,
			"gst":            gst,
			"updated_by":     updatedBy,
		}).Error
}

func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	res := r.conn(tx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ForUpdate adds a row lock on dialects that support one. SQLite locks the
// whole database for a write transaction, so nothing is added there.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
