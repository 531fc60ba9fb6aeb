package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agristock/internal/model"
)

type DirectoryRepository interface {
	UpsertCustomer(tx *gorm.DB, c *model.Customer) error
	UpsertSupplier(tx *gorm.DB, s *model.Supplier) error

	FindCustomers() ([]model.Customer, error)
	FindCustomer(key string) (*model.Customer, error)
	UpdateCustomer(c *model.Customer) error
	DeleteCustomer(key string) error

	FindSuppliers() ([]model.Supplier, error)
	FindSupplier(key string) (*model.Supplier, error)
	UpdateSupplier(s *model.Supplier) error
	DeleteSupplier(key string) error
}

type directoryRepo struct {
	db *gorm.DB
}

func NewDirectoryRepo(db *gorm.DB) DirectoryRepository {
	return &directoryRepo{db}
}

func (r *directoryRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// keepUnlessBlank builds "col = incoming unless incoming is empty"
func keepUnlessBlank(table, col string) clause.Expr {
	return gorm.Expr(fmt.Sprintf(
		"CASE WHEN excluded.%[2]s IS NULL OR excluded.%[2]s = '' THEN %[1]s.%[2]s ELSE excluded.%[2]s END",
		table, col,
	))
}

// mergeOnKey merges a party row on its derived key. The name and the
// activity timestamp always take the incoming value; phone and address only
// when the incoming snapshot carries one.
func mergeOnKey(table, activityCol string) clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":       gorm.Expr("excluded.name"),
			"phone":      keepUnlessBlank(table, "phone"),
			"address":    keepUnlessBlank(table, "address"),
			activityCol:  gorm.Expr(fmt.Sprintf("COALESCE(excluded.%[2]s, %[1]s.%[2]s)", table, activityCol)),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}
}

func (r *directoryRepo) UpsertCustomer(tx *gorm.DB, c *model.Customer) error {
	return r.conn(tx).Clauses(mergeOnKey("customers", "last_visit")).Create(c).Error
}

func (r *directoryRepo) UpsertSupplier(tx *gorm.DB, s *model.Supplier) error {
	return r.conn(tx).Clauses(mergeOnKey("suppliers", "last_purchase")).Create(s).Error
}

func (r *directoryRepo) FindCustomers() ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *directoryRepo) FindCustomer(key string) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.First(&c, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *directoryRepo) UpdateCustomer(c *model.Customer) error {
	res := r.db.Model(&model.Customer{}).Where("key = ?", c.Key).Updates(map[string]interface{}{
		"name":    c.Name,
		"phone":   c.Phone,
		"address": c.Address,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *directoryRepo) DeleteCustomer(key string) error {
	res := r.db.Delete(&model.Customer{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *directoryRepo) FindSuppliers() ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *directoryRepo) FindSupplier(key string) (*model.Supplier, error) {
	var s model.Supplier
	if err := r.db.First(&s, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *directoryRepo) UpdateSupplier(s *model.Supplier) error {
	res := r.db.Model(&model.Supplier{}).Where("key = ?", s.Key).Updates(map[string]interface{}{
		"name":    s.Name,
		"phone":   s.Phone,
		"address": s.Address,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *directoryRepo) DeleteSupplier(key string) error {
	res := r.db.Delete(&model.Supplier{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
