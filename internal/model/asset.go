package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetType Enum Simulation
const (
	AssetTypeReturnable    = "RETURNABLE"
	AssetTypeNonReturnable = "NON_RETURNABLE"
)

// Asset represents an inventory item owned by an HR account.
type Asset struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerHrEmail string    `gorm:"type:varchar(255);not null;index" json:"owner_hr_email"`
	ProductName  string    `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductType  string    `gorm:"type:varchar(20);not null" json:"product_type"` // RETURNABLE, NON_RETURNABLE
	Quantity     int       `gorm:"type:int;default:0;not null" json:"quantity"`

	// Version backs the optimistic compare-and-set guarding quantity.
	Version int `gorm:"type:int;default:0;not null" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MovementType Enum Simulation
const (
	MovementOut    = "OUT"    // handed to an employee on approval
	MovementReturn = "RETURN" // compensating restore after a failed approval
)

// AssetMovement records every quantity change strictly, one row per
// decrement or compensating increment, so stock history is auditable.
type AssetMovement struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"asset_id"`
	RequestID     *uuid.UUID `gorm:"type:uuid;index" json:"request_id"` // Nullable in case of manual adjustments
	MovementType  string     `gorm:"type:varchar(10);not null" json:"movement_type"` // OUT, RETURN
	QuantityAfter int        `gorm:"type:int;not null" json:"quantity_after"`
	CreatedAt     time.Time  `json:"created_at"`
}
