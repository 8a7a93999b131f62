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

type CreatePaymentIntentRequest struct {
	PackageSize int `json:"package_size" binding:"required"`
}

type CompletePaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

type PaymentResponse struct {
	ID            string  `json:"id"`
	HrEmail       string  `json:"hr_email"`
	PackageSize   int     `json:"package_size"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id,omitempty"`
	CompletedAt   *string `json:"completed_at"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

// PaymentService handles member-package purchases. Completing a payment
// is the single side effect that raises an HR account's employee limit;
// the approval workflow tolerates the limit changing between its reads.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, hrEmail string, req CreatePaymentIntentRequest) (PaymentResponse, error)
	CompletePayment(ctx context.Context, hrEmail, id string, req CompletePaymentRequest) (PaymentResponse, error)
	ListPayments(ctx context.Context, hrEmail string, page, limit int) ([]PaymentResponse, int64, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *paymentService) CreatePaymentIntent(ctx context.Context, hrEmail string, req CreatePaymentIntentRequest) (PaymentResponse, error) {
	price, ok := model.MemberPackages[req.PackageSize]
	if !ok {
		return PaymentResponse{}, fmt.Errorf("unknown member package: %d", req.PackageSize)
	}

	hr, err := s.userRepo.GetByEmail(ctx, hrEmail)
	if err != nil {
		return PaymentResponse{}, err
	}
	if hr.Role != model.RoleHR {
		return PaymentResponse{}, repository.ErrNotFound
	}

	payment := &model.Payment{
		HrEmail:     hrEmail,
		PackageSize: req.PackageSize,
		Amount:      price,
		Status:      model.PaymentCreated,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return PaymentResponse{}, err
	}

	return toPaymentResponse(*payment), nil
}

// CompletePayment marks the payment COMPLETED and raises the HR account's
// employee limit by the package size. Both writes share one transaction:
// the MarkCompleted claim succeeds at most once per payment, so the limit
// is raised exactly once no matter how often the webhook retries.
func (s *paymentService) CompletePayment(ctx context.Context, hrEmail, id string, req CompletePaymentRequest) (PaymentResponse, error) {
	paymentID, err := uuid.Parse(id)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid payment id: %w", err)
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, err
	}
	if payment.HrEmail != hrEmail {
		return PaymentResponse{}, repository.ErrNotFound
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if markErr := s.paymentRepo.MarkCompleted(txCtx, paymentID, req.TransactionID); markErr != nil {
			return markErr
		}
		if raiseErr := s.userRepo.RaiseEmployeeLimit(txCtx, hrEmail, payment.PackageSize); raiseErr != nil {
			return raiseErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"package_size":   payment.PackageSize,
			"amount":         payment.Amount.StringFixed(2),
			"transaction_id": req.TransactionID,
		})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			ActorEmail: hrEmail,
			Action:     model.ActionCompletePayment,
			EntityID:   payment.ID.String(),
			Details:    string(details),
		})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	completed, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, err
	}
	return toPaymentResponse(*completed), nil
}

func (s *paymentService) ListPayments(ctx context.Context, hrEmail string, page, limit int) ([]PaymentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	payments, total, err := s.paymentRepo.ListByHr(ctx, hrEmail, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, toPaymentResponse(p))
	}

	return responses, total, nil
}

// --- Helpers ---

func toPaymentResponse(p model.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.String(),
		HrEmail:       p.HrEmail,
		PackageSize:   p.PackageSize,
		Amount:        p.Amount.StringFixed(2),
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.CompletedAt != nil {
		completed := p.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}
