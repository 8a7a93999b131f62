package repository

import (
	"context"
	"fmt"
	"time"

	"assetverse/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByHr(ctx context.Context, hrEmail string, page, limit int) ([]model.Payment, int64, error)

	// MarkCompleted flips a CREATED payment to COMPLETED exactly once;
	// a second completion attempt returns ErrAlreadyProcessed.
	MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := GetDB(ctx, r.db).Create(payment).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByHr(ctx context.Context, hrEmail string, page, limit int) ([]model.Payment, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Payment{}).Where("hr_email = ?", hrEmail).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var payments []model.Payment
	offset := (page - 1) * limit
	err := db.Where("hr_email = ?", hrEmail).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return payments, total, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error {
	db := GetDB(ctx, r.db)
	now := time.Now()

	res := db.Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, model.PaymentCreated).
		Updates(map[string]interface{}{
			"status":         model.PaymentCompleted,
			"transaction_id": transactionID,
			"completed_at":   &now,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&model.Payment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyProcessed
}
