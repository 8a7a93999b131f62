package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus constants. A request leaves PENDING exactly once; every
// other status is terminal.
const (
	RequestPending   = "PENDING"
	RequestApproved  = "APPROVED"
	RequestRejected  = "REJECTED"
	RequestCancelled = "CANCELLED"
)

// AssetRequest represents an employee's pending claim on one unit of an
// asset. Created by the requester in PENDING state; mutated exclusively
// by the approval workflow and never physically deleted once terminal.
type AssetRequest struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterEmail string     `gorm:"type:varchar(255);not null;index" json:"requester_email"`
	RequesterName  string     `gorm:"type:varchar(255)" json:"requester_name"`
	AssetID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"asset_id"`
	Asset          *Asset     `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	HrEmail        string     `gorm:"type:varchar(255);not null;index" json:"hr_email"`
	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Note           string     `gorm:"type:text" json:"note"`
	DecidedAt      *time.Time `json:"decided_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Terminal reports whether the request has left the PENDING state.
func (r *AssetRequest) Terminal() bool {
	return r.Status != RequestPending
}
