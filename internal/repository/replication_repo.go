package repository

import (
	"time"

	"gorm.io/gorm"

	"agristock/internal/model"
)

type ReplicationFailureRepository interface {
	Create(f *model.ReplicationFailure) error
	FindUnresolved(limit int) ([]model.ReplicationFailure, error)
	MarkResolved(id uint) error
	RecordAttempt(id uint, errMsg string) error
}

type replicationFailureRepo struct {
	db *gorm.DB
}

func NewReplicationFailureRepo(db *gorm.DB) ReplicationFailureRepository {
	return &replicationFailureRepo{db}
}

func (r *replicationFailureRepo) Create(f *model.ReplicationFailure) error {
	return r.db.Create(f).Error
}

func (r *replicationFailureRepo) FindUnresolved(limit int) ([]model.ReplicationFailure, error) {
	var failures []model.ReplicationFailure
	q := r.db.Where("resolved_at IS NULL").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&failures).Error
	return failures, err
}

func (r *replicationFailureRepo) MarkResolved(id uint) error {
	return r.db.Model(&model.ReplicationFailure{}).Where("id = ?", id).Update("resolved_at", time.Now()).Error
}

func (r *replicationFailureRepo) RecordAttempt(id uint, errMsg string) error {
	return r.db.Model(&model.ReplicationFailure{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
		"error":    errMsg,
	}).Error
}
