package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateAsset   = "CREATE_ASSET"
	ActionUpdateAsset   = "UPDATE_ASSET"
	ActionDeleteAsset   = "DELETE_ASSET"
	ActionCreateRequest = "CREATE_REQUEST"

	// Approval workflow actions
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"
	ActionCancelRequest  = "CANCEL_REQUEST"
	ActionRemoveEmployee = "REMOVE_EMPLOYEE"

	// Flagged when a compensating step fails and the request needs repair
	ActionReconciliationRequired = "RECONCILIATION_REQUIRED"

	ActionCompletePayment = "COMPLETE_PAYMENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorEmail string    `gorm:"type:varchar(255);index" json:"actor_email"` // Empty gracefully if automated
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/email)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
