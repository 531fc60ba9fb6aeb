package repository

import (
	"gorm.io/gorm"

	"agristock/internal/model"
)

type CounterRepository interface {
	Next(tx *gorm.DB, name string) (int64, error)
	Current(name string) (int64, error)
}

type counterRepo struct {
	db *gorm.DB
}

func NewCounterRepo(db *gorm.DB) CounterRepository {
	return &counterRepo{db}
}

// Next increments the named counter inside tx and returns the new value.
// The UPDATE holds the row lock until tx ends, so concurrent callers are
// handed consecutive values in commit order.
func (r *counterRepo) Next(tx *gorm.DB, name string) (int64, error) {
	res := tx.Model(&model.Counter{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		c := model.Counter{Name: name, Value: 1}
		if err := tx.Create(&c).Error; err != nil {
			return 0, err
		}
		return c.Value, nil
	}

	var c model.Counter
	if err := tx.First(&c, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return c.Value, nil
}

func (r *counterRepo) Current(name string) (int64, error) {
	var c model.Counter
	err := r.db.First(&c, "name = ?", name).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	return c.Value, err
}
