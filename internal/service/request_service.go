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

type CreateRequestDTO struct {
	AssetID string `json:"asset_id" binding:"required"`
	Note    string `json:"note"`
}

type RequestFilter struct {
	Status string // PENDING, APPROVED, REJECTED, CANCELLED or empty for all
	Page   int
	Limit  int
}

type RequestResponse struct {
	ID             string  `json:"id"`
	RequesterEmail string  `json:"requester_email"`
	RequesterName  string  `json:"requester_name"`
	AssetID        string  `json:"asset_id"`
	AssetName      string  `json:"asset_name"`
	AssetType      string  `json:"asset_type"`
	HrEmail        string  `json:"hr_email"`
	Status         string  `json:"status"`
	Note           string  `json:"note"`
	DecidedAt      *string `json:"decided_at"`
	CreatedAt      string  `json:"created_at"`
}

// --- Interface ---

// RequestService covers the requester-facing surface: creating a PENDING
// request and listing requests. All status transitions go through
// ApprovalService.
type RequestService interface {
	CreateRequest(ctx context.Context, requesterEmail string, req CreateRequestDTO) (RequestResponse, error)
	ListMyRequests(ctx context.Context, requesterEmail string, filter RequestFilter) ([]RequestResponse, int64, error)
	ListHrRequests(ctx context.Context, hrEmail string, filter RequestFilter) ([]RequestResponse, int64, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	assetRepo   repository.AssetRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	assetRepo repository.AssetRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		assetRepo:   assetRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, requesterEmail string, dto CreateRequestDTO) (RequestResponse, error) {
	assetID, err := uuid.Parse(dto.AssetID)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("invalid asset_id: %w", err)
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return RequestResponse{}, err
	}

	requester, err := s.userRepo.GetByEmail(ctx, requesterEmail)
	if err != nil {
		return RequestResponse{}, err
	}

	request := &model.AssetRequest{
		RequesterEmail: requester.Email,
		RequesterName:  requester.Name,
		AssetID:        asset.ID,
		HrEmail:        asset.OwnerHrEmail,
		Status:         model.RequestPending,
		Note:           dto.Note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requestRepo.Create(txCtx, request); createErr != nil {
			return createErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"asset_id": asset.ID.String(),
			"hr_email": asset.OwnerHrEmail,
		})
		audit := &model.AuditLog{
			ActorEmail: requester.Email,
			Action:     model.ActionCreateRequest,
			EntityID:   request.ID.String(),
			EntityName: asset.ProductName,
			Details:    string(details),
		}
		return s.auditRepo.Create(txCtx, audit)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	request.Asset = asset
	return toRequestResponse(*request), nil
}

func (s *requestService) ListMyRequests(ctx context.Context, requesterEmail string, filter RequestFilter) ([]RequestResponse, int64, error) {
	filter = normalizeFilter(filter)
	requests, total, err := s.requestRepo.ListByRequester(ctx, requesterEmail, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	return toRequestResponses(requests), total, nil
}

func (s *requestService) ListHrRequests(ctx context.Context, hrEmail string, filter RequestFilter) ([]RequestResponse, int64, error) {
	filter = normalizeFilter(filter)
	requests, total, err := s.requestRepo.ListByHr(ctx, hrEmail, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	return toRequestResponses(requests), total, nil
}

// --- Helpers ---

func normalizeFilter(f RequestFilter) RequestFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return f
}

func toRequestResponse(r model.AssetRequest) RequestResponse {
	resp := RequestResponse{
		ID:             r.ID.String(),
		RequesterEmail: r.RequesterEmail,
		RequesterName:  r.RequesterName,
		AssetID:        r.AssetID.String(),
		HrEmail:        r.HrEmail,
		Status:         r.Status,
		Note:           r.Note,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if r.Asset != nil {
		resp.AssetName = r.Asset.ProductName
		resp.AssetType = r.Asset.ProductType
	}
	if r.DecidedAt != nil {
		decided := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}

func toRequestResponses(requests []model.AssetRequest) []RequestResponse {
	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result
}
