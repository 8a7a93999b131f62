package repository

import (
	"context"
	"fmt"
	"time"

	"assetverse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestRepository defines data access for asset requests. Status is
// only ever mutated through TryClaimTransition and RevertToPending.
type RequestRepository interface {
	Create(ctx context.Context, req *model.AssetRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AssetRequest, error)
	ListByRequester(ctx context.Context, requesterEmail, status string, page, limit int) ([]model.AssetRequest, int64, error)
	ListByHr(ctx context.Context, hrEmail, status string, page, limit int) ([]model.AssetRequest, int64, error)

	// TryClaimTransition atomically moves a PENDING request to a terminal
	// status. At most one concurrent caller wins; losers observe
	// ErrAlreadyProcessed (or ErrNotFound) with no side effects.
	TryClaimTransition(ctx context.Context, id uuid.UUID, to string) error

	// RevertToPending is the compensating half of a claim, used when a
	// later saga step fails.
	RevertToPending(ctx context.Context, id uuid.UUID, from string) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new instance of RequestRepository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.AssetRequest) error {
	if err := GetDB(ctx, r.db).Create(req).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AssetRequest, error) {
	var req model.AssetRequest
	if err := GetDB(ctx, r.db).Preload("Asset").First(&req, "id = ?", id).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return &req, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterEmail, status string, page, limit int) ([]model.AssetRequest, int64, error) {
	return r.list(ctx, "requester_email = ?", requesterEmail, status, page, limit)
}

func (r *requestRepository) ListByHr(ctx context.Context, hrEmail, status string, page, limit int) ([]model.AssetRequest, int64, error) {
	return r.list(ctx, "hr_email = ?", hrEmail, status, page, limit)
}

func (r *requestRepository) list(ctx context.Context, cond, arg, status string, page, limit int) ([]model.AssetRequest, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.AssetRequest{}).Where(cond, arg)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Asset").Where(cond, arg)
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}

	var requests []model.AssetRequest
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return requests, total, nil
}

func (r *requestRepository) TryClaimTransition(ctx context.Context, id uuid.UUID, to string) error {
	db := GetDB(ctx, r.db)
	now := time.Now()

	res := db.Model(&model.AssetRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]interface{}{
			"status":     to,
			"decided_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows: either the request does not exist or it already left
	// PENDING. Disambiguate with a follow-up read.
	var count int64
	if err := db.Model(&model.AssetRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyProcessed
}

func (r *requestRepository) RevertToPending(ctx context.Context, id uuid.UUID, from string) error {
	res := GetDB(ctx, r.db).Model(&model.AssetRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     model.RequestPending,
			"decided_at": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
