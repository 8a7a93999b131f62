package repository

import (
	"context"
	"fmt"

	"assetverse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetRepository defines data access for inventory items. Quantity is
// only ever mutated through TryDecrement and Increment; the CRUD methods
// cover the non-quantity fields the HR dashboard edits.
type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	List(ctx context.Context, ownerHrEmail, search, productType string, page, limit int) ([]model.Asset, int64, error)
	Update(ctx context.Context, id uuid.UUID, productName, productType string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Atomic quantity primitives.
	TryDecrement(ctx context.Context, id uuid.UUID) (newQuantity int, err error)
	Increment(ctx context.Context, id uuid.UUID) error
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository returns a new instance of AssetRepository
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	if err := GetDB(ctx, r.db).Create(asset).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).First(&asset, "id = ?", id).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context, ownerHrEmail, search, productType string, page, limit int) ([]model.Asset, int64, error) {
	db := GetDB(ctx, r.db)

	build := func() *gorm.DB {
		q := db.Model(&model.Asset{}).Where("owner_hr_email = ?", ownerHrEmail)
		if search != "" {
			q = q.Where("product_name ILIKE ?", "%"+search+"%")
		}
		if productType != "" {
			q = q.Where("product_type = ?", productType)
		}
		return q
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var assets []model.Asset
	offset := (page - 1) * limit
	if err := build().Order("created_at DESC").Offset(offset).Limit(limit).Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return assets, total, nil
}

func (r *assetRepository) Update(ctx context.Context, id uuid.UUID, productName, productType string) error {
	res := GetDB(ctx, r.db).Model(&model.Asset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"product_name": productName,
			"product_type": productType,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Asset{})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TryDecrement takes one unit off the asset's quantity. Optimistic CAS on
// the version column with bounded retry; a quantity already at zero is
// ErrInsufficientQuantity with no mutation.
func (r *assetRepository) TryDecrement(ctx context.Context, id uuid.UUID) (int, error) {
	db := GetDB(ctx, r.db)
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var asset model.Asset
		if err := db.First(&asset, "id = ?", id).Error; err != nil {
			return 0, wrapStoreErr(err)
		}

		if asset.Quantity <= 0 {
			return 0, ErrInsufficientQuantity
		}

		res := db.Model(&model.Asset{}).
			Where("id = ? AND version = ?", id, asset.Version).
			Updates(map[string]interface{}{
				"quantity": asset.Quantity - 1,
				"version":  asset.Version + 1,
			})
		if res.Error != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
		}
		if res.RowsAffected > 0 {
			return asset.Quantity - 1, nil
		}
		// Lost the version race, re-read and retry.
	}
	return 0, fmt.Errorf("%w: quantity conflict for asset %s", ErrStoreUnavailable, id)
}

// Increment restores one unit, the compensating half of TryDecrement.
func (r *assetRepository) Increment(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Model(&model.Asset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity + 1"),
			"version":  gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
