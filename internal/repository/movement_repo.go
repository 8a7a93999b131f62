package repository

import (
	"context"
	"fmt"

	"assetverse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementRepository interface {
	Create(ctx context.Context, movement *model.AssetMovement) error
	ListByAsset(ctx context.Context, assetID uuid.UUID, page, limit int) ([]model.AssetMovement, int64, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *model.AssetMovement) error {
	if err := GetDB(ctx, r.db).Create(movement).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *movementRepository) ListByAsset(ctx context.Context, assetID uuid.UUID, page, limit int) ([]model.AssetMovement, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.AssetMovement{}).Where("asset_id = ?", assetID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var movements []model.AssetMovement
	offset := (page - 1) * limit
	err := db.Where("asset_id = ?", assetID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return movements, total, nil
}
