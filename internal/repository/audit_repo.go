package repository

import (
	"context"
	"fmt"

	"assetverse/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, action, actorEmail string, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	if err := GetDB(ctx, r.db).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, action, actorEmail string, page, limit int) ([]model.AuditLog, int64, error) {
	db := GetDB(ctx, r.db)

	build := func() *gorm.DB {
		q := db.Model(&model.AuditLog{})
		if action != "" {
			q = q.Where("action = ?", action)
		}
		if actorEmail != "" {
			q = q.Where("actor_email = ?", actorEmail)
		}
		return q
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var entries []model.AuditLog
	offset := (page - 1) * limit
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return entries, total, nil
}
