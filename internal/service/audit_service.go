package service

import (
	"context"
	"time"

	"assetverse/internal/model"
	"assetverse/internal/repository"
)

type AuditFilter struct {
	Action     string
	ActorEmail string
	Page       int
	Limit      int
}

type AuditResponse struct {
	ID         string `json:"id"`
	ActorEmail string `json:"actor_email"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name,omitempty"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	entries, total, err := s.repo.List(ctx, filter.Action, filter.ActorEmail, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AuditResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toAuditResponse(e))
	}

	return responses, total, nil
}

func toAuditResponse(e model.AuditLog) AuditResponse {
	return AuditResponse{
		ID:         e.ID.String(),
		ActorEmail: e.ActorEmail,
		Action:     e.Action,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}
