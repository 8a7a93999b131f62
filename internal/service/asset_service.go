package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"assetverse/internal/model"
	"assetverse/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateAssetRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	ProductType string `json:"product_type" binding:"required,oneof=RETURNABLE NON_RETURNABLE"`
	Quantity    int    `json:"quantity" binding:"required,gte=0"`
}

type UpdateAssetRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	ProductType string `json:"product_type" binding:"required,oneof=RETURNABLE NON_RETURNABLE"`
}

type AssetFilter struct {
	Search      string
	ProductType string
	Page        int
	Limit       int
}

type AssetResponse struct {
	ID           string `json:"id"`
	OwnerHrEmail string `json:"owner_hr_email"`
	ProductName  string `json:"product_name"`
	ProductType  string `json:"product_type"`
	Quantity     int    `json:"quantity"`
	CreatedAt    string `json:"created_at"`
}

type MovementResponse struct {
	ID            string `json:"id"`
	AssetID       string `json:"asset_id"`
	RequestID     string `json:"request_id,omitempty"`
	MovementType  string `json:"movement_type"`
	QuantityAfter int    `json:"quantity_after"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

// AssetService covers the HR-facing inventory CRUD. Quantity is created
// here but only ever changed by the approval workflow.
type AssetService interface {
	CreateAsset(ctx context.Context, hrEmail string, req CreateAssetRequest) (AssetResponse, error)
	GetAsset(ctx context.Context, id string) (AssetResponse, error)
	ListAssets(ctx context.Context, hrEmail string, filter AssetFilter) ([]AssetResponse, int64, error)
	UpdateAsset(ctx context.Context, hrEmail, id string, req UpdateAssetRequest) (AssetResponse, error)
	DeleteAsset(ctx context.Context, hrEmail, id string) error
	ListMovements(ctx context.Context, id string, page, limit int) ([]MovementResponse, int64, error)
}

type assetService struct {
	assetRepo    repository.AssetRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewAssetService(
	assetRepo repository.AssetRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) AssetService {
	return &assetService{
		assetRepo:    assetRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *assetService) CreateAsset(ctx context.Context, hrEmail string, req CreateAssetRequest) (AssetResponse, error) {
	asset := &model.Asset{
		OwnerHrEmail: hrEmail,
		ProductName:  req.ProductName,
		ProductType:  req.ProductType,
		Quantity:     req.Quantity,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.assetRepo.Create(txCtx, asset); createErr != nil {
			return createErr
		}
		return s.audit(txCtx, hrEmail, model.ActionCreateAsset, asset)
	})
	if err != nil {
		return AssetResponse{}, err
	}

	return toAssetResponse(*asset), nil
}

func (s *assetService) GetAsset(ctx context.Context, id string) (AssetResponse, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("invalid asset id: %w", err)
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return AssetResponse{}, err
	}

	return toAssetResponse(*asset), nil
}

func (s *assetService) ListAssets(ctx context.Context, hrEmail string, filter AssetFilter) ([]AssetResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	assets, total, err := s.assetRepo.List(ctx, hrEmail, filter.Search, filter.ProductType, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		responses = append(responses, toAssetResponse(a))
	}

	return responses, total, nil
}

func (s *assetService) UpdateAsset(ctx context.Context, hrEmail, id string, req UpdateAssetRequest) (AssetResponse, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("invalid asset id: %w", err)
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return AssetResponse{}, err
	}
	if asset.OwnerHrEmail != hrEmail {
		return AssetResponse{}, repository.ErrNotFound
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.assetRepo.Update(txCtx, assetID, req.ProductName, req.ProductType); updateErr != nil {
			return updateErr
		}
		asset.ProductName = req.ProductName
		asset.ProductType = req.ProductType
		return s.audit(txCtx, hrEmail, model.ActionUpdateAsset, asset)
	})
	if err != nil {
		return AssetResponse{}, err
	}

	return toAssetResponse(*asset), nil
}

func (s *assetService) DeleteAsset(ctx context.Context, hrEmail, id string) error {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid asset id: %w", err)
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.OwnerHrEmail != hrEmail {
		return repository.ErrNotFound
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.assetRepo.Delete(txCtx, assetID); deleteErr != nil {
			return deleteErr
		}
		return s.audit(txCtx, hrEmail, model.ActionDeleteAsset, asset)
	})
}

func (s *assetService) ListMovements(ctx context.Context, id string, page, limit int) ([]MovementResponse, int64, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid asset id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	movements, total, err := s.movementRepo.ListByAsset(ctx, assetID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		resp := MovementResponse{
			ID:            m.ID.String(),
			AssetID:       m.AssetID.String(),
			MovementType:  m.MovementType,
			QuantityAfter: m.QuantityAfter,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.RequestID != nil {
			resp.RequestID = m.RequestID.String()
		}
		responses = append(responses, resp)
	}

	return responses, total, nil
}

// --- Helpers ---

func (s *assetService) audit(ctx context.Context, actorEmail, action string, asset *model.Asset) error {
	details, _ := json.Marshal(map[string]interface{}{
		"product_name": asset.ProductName,
		"product_type": asset.ProductType,
		"quantity":     asset.Quantity,
	})
	return s.auditRepo.Create(ctx, &model.AuditLog{
		ActorEmail: actorEmail,
		Action:     action,
		EntityID:   asset.ID.String(),
		EntityName: asset.ProductName,
		Details:    string(details),
	})
}

func toAssetResponse(a model.Asset) AssetResponse {
	return AssetResponse{
		ID:           a.ID.String(),
		OwnerHrEmail: a.OwnerHrEmail,
		ProductName:  a.ProductName,
		ProductType:  a.ProductType,
		Quantity:     a.Quantity,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}
