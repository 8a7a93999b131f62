package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"assetverse/internal/model"
	"assetverse/internal/repository"
	ws "assetverse/internal/websocket"

	"github.com/google/uuid"
)

// ErrReconciliationRequired is returned when a compensating step fails
// after a claimed transition: the stores may disagree and the request is
// flagged for repair instead of reporting a clean failure.
var ErrReconciliationRequired = errors.New("request requires reconciliation")

// ApprovalService coordinates a request's one-shot transition out of
// PENDING across the request, asset and account stores. No transaction
// spans the three aggregates; each mutation after the claim is a saga
// step with a compensating action executed in reverse order on failure.
type ApprovalService interface {
	Approve(ctx context.Context, id, actorEmail string) (RequestResponse, error)
	Reject(ctx context.Context, id, actorEmail string) (RequestResponse, error)
	Cancel(ctx context.Context, id, requesterEmail string) error
	RemoveEmployee(ctx context.Context, employeeEmail, hrEmail, actorEmail string) error
}

type approvalService struct {
	requestRepo  repository.RequestRepository
	assetRepo    repository.AssetRepository
	userRepo     repository.UserRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	guard        *TransitionGuard
	hub          *ws.Hub
}

func NewApprovalService(
	requestRepo repository.RequestRepository,
	assetRepo repository.AssetRepository,
	userRepo repository.UserRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	guard *TransitionGuard,
	hub *ws.Hub,
) ApprovalService {
	return &approvalService{
		requestRepo:  requestRepo,
		assetRepo:    assetRepo,
		userRepo:     userRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		guard:        guard,
		hub:          hub,
	}
}

// Approve moves a PENDING request to APPROVED, hands out one unit of the
// asset and affiliates the requester with the HR account. Step order
// matters: the capacity check runs before the claim so an over-limit HR
// rejects the approval without consuming the request's one-shot
// transition, and the claim runs before any inventory mutation so only
// the winner of a concurrent race touches inventory.
func (s *approvalService) Approve(ctx context.Context, id, actorEmail string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("invalid request id: %w", err)
	}

	if !s.guard.TryAcquire(requestID) {
		return RequestResponse{}, repository.ErrAlreadyProcessed
	}
	defer s.guard.Release(requestID)

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return RequestResponse{}, err
	}
	if req.Terminal() {
		return RequestResponse{}, repository.ErrAlreadyProcessed
	}

	// Company fields copied onto the employee on affiliation.
	hr, err := s.userRepo.GetByEmail(ctx, req.HrEmail)
	if err != nil {
		return RequestResponse{}, err
	}

	requester, err := s.userRepo.GetByEmail(ctx, req.RequesterEmail)
	if err != nil {
		return RequestResponse{}, err
	}

	// Capacity guards seats, not assets: an employee already affiliated
	// with this HR borrowing another asset takes no new seat, so the
	// check applies only when the approval would create an affiliation.
	if !requester.AffiliatedWith(req.HrEmail) {
		current, limit, err := s.userRepo.ReadCapacity(ctx, req.HrEmail)
		if err != nil {
			return RequestResponse{}, err
		}
		if current >= limit {
			return RequestResponse{}, repository.ErrCapacityExceeded
		}
	}

	if err := s.requestRepo.TryClaimTransition(ctx, requestID, model.RequestApproved); err != nil {
		return RequestResponse{}, err
	}

	var undo []func(context.Context) error
	undo = append(undo, func(cctx context.Context) error {
		return s.requestRepo.RevertToPending(cctx, requestID, model.RequestApproved)
	})

	newQty, err := s.assetRepo.TryDecrement(ctx, req.AssetID)
	if err != nil {
		return RequestResponse{}, s.fail(ctx, req, err, undo)
	}
	undo = append(undo, func(cctx context.Context) error {
		if ierr := s.assetRepo.Increment(cctx, req.AssetID); ierr != nil {
			return ierr
		}
		s.recordMovement(cctx, req, model.MovementReturn, newQty+1)
		return nil
	})

	changed, err := s.userRepo.TryAffiliate(ctx, req.RequesterEmail, req.HrEmail, hr.CompanyName, hr.CompanyLogo)
	if err != nil {
		return RequestResponse{}, s.fail(ctx, req, err, undo)
	}
	if changed {
		undo = append(undo, func(cctx context.Context) error {
			_, cerr := s.userRepo.ClearAffiliation(cctx, req.RequesterEmail, req.HrEmail)
			return cerr
		})

		// Only a newly created affiliation takes a seat. The limit may
		// have moved since the pre-check; the primitive re-reads it
		// atomically.
		if err := s.userRepo.TryIncrementEmployeeCount(ctx, req.HrEmail); err != nil {
			return RequestResponse{}, s.fail(ctx, req, err, undo)
		}
	}

	s.recordMovement(ctx, req, model.MovementOut, newQty)
	s.audit(ctx, actorEmail, model.ActionApproveRequest, req, map[string]interface{}{
		"asset_id":  req.AssetID.String(),
		"requester": req.RequesterEmail,
	})
	s.broadcast("request.approved", req)

	now := time.Now()
	req.Status = model.RequestApproved
	req.DecidedAt = &now
	return toRequestResponse(*req), nil
}

// Reject moves a PENDING request to REJECTED. Single-step claim, no
// other-aggregate side effects.
func (s *approvalService) Reject(ctx context.Context, id, actorEmail string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("invalid request id: %w", err)
	}

	if !s.guard.TryAcquire(requestID) {
		return RequestResponse{}, repository.ErrAlreadyProcessed
	}
	defer s.guard.Release(requestID)

	// Read before the claim so a transient read failure afterwards can
	// never mask a transition that durably happened.
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return RequestResponse{}, err
	}

	if err := s.requestRepo.TryClaimTransition(ctx, requestID, model.RequestRejected); err != nil {
		return RequestResponse{}, err
	}

	s.audit(ctx, actorEmail, model.ActionRejectRequest, req, nil)
	s.broadcast("request.rejected", req)

	now := time.Now()
	req.Status = model.RequestRejected
	req.DecidedAt = &now
	return toRequestResponse(*req), nil
}

// Cancel lets a requester withdraw their own still-PENDING request. The
// transition is terminal; the row is kept.
func (s *approvalService) Cancel(ctx context.Context, id, requesterEmail string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}

	if !s.guard.TryAcquire(requestID) {
		return repository.ErrAlreadyProcessed
	}
	defer s.guard.Release(requestID)

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.RequesterEmail != requesterEmail {
		// Do not reveal other requesters' request ids.
		return repository.ErrNotFound
	}

	if err := s.requestRepo.TryClaimTransition(ctx, requestID, model.RequestCancelled); err != nil {
		return err
	}

	s.audit(ctx, requesterEmail, model.ActionCancelRequest, req, nil)
	s.broadcast("request.cancelled", req)

	return nil
}

// RemoveEmployee detaches an employee from an HR account and lowers the
// head count. A no-op when the employee is not affiliated with that HR;
// the guarded clear ensures the decrement happens at most once even
// under concurrent removals.
func (s *approvalService) RemoveEmployee(ctx context.Context, employeeEmail, hrEmail, actorEmail string) error {
	changed, err := s.userRepo.ClearAffiliation(ctx, employeeEmail, hrEmail)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := s.userRepo.DecrementEmployeeCount(ctx, hrEmail); err != nil {
		return fmt.Errorf("%w: employee %s detached but count not decremented: %v",
			ErrReconciliationRequired, employeeEmail, err)
	}

	s.audit(ctx, actorEmail, model.ActionRemoveEmployee, nil, map[string]interface{}{
		"employee": employeeEmail,
		"hr":       hrEmail,
	})
	return nil
}

// fail runs the accumulated compensations in reverse order and returns
// the original error. Compensation runs detached from the caller's
// cancellation so an approval is never left half-applied; if a
// compensating step itself fails, ErrReconciliationRequired is surfaced
// instead of the original outcome.
func (s *approvalService) fail(ctx context.Context, req *model.AssetRequest, cause error, undo []func(context.Context) error) error {
	cctx := context.WithoutCancel(ctx)
	for i := len(undo) - 1; i >= 0; i-- {
		if cerr := undo[i](cctx); cerr != nil {
			log.Printf("compensation failed for request %s: %v (original outcome: %v)", req.ID, cerr, cause)
			s.audit(cctx, "", model.ActionReconciliationRequired, req, map[string]interface{}{
				"outcome":            cause.Error(),
				"compensation_error": cerr.Error(),
			})
			return fmt.Errorf("%w: request %s", ErrReconciliationRequired, req.ID)
		}
	}
	return cause
}

// recordMovement writes a stock-ledger row. Best effort: a failed ledger
// write is logged, not propagated, because the quantity mutation it
// describes has already been applied.
func (s *approvalService) recordMovement(ctx context.Context, req *model.AssetRequest, movementType string, quantityAfter int) {
	reqID := req.ID
	movement := &model.AssetMovement{
		AssetID:       req.AssetID,
		RequestID:     &reqID,
		MovementType:  movementType,
		QuantityAfter: quantityAfter,
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		log.Printf("failed to record asset movement for request %s: %v", req.ID, err)
	}
}

func (s *approvalService) audit(ctx context.Context, actorEmail, action string, req *model.AssetRequest, details map[string]interface{}) {
	entry := &model.AuditLog{
		ActorEmail: actorEmail,
		Action:     action,
	}
	if req != nil {
		entry.EntityID = req.ID.String()
		entry.EntityName = req.RequesterEmail
	}
	if details != nil {
		payload, _ := json.Marshal(details)
		entry.Details = string(payload)
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("failed to write audit log (%s): %v", action, err)
	}
}

func (s *approvalService) broadcast(event string, req *model.AssetRequest) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(ws.Event{
		Event: event,
		Data: map[string]interface{}{
			"request_id": req.ID.String(),
			"asset_id":   req.AssetID.String(),
			"requester":  req.RequesterEmail,
			"hr_email":   req.HrEmail,
		},
	})
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- payload:
	default:
		// Never block a decision on a slow dashboard.
	}
}
