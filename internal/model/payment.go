package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus constants
const (
	PaymentCreated   = "CREATED"
	PaymentCompleted = "COMPLETED"
)

// MemberPackages maps a purchasable member-package size to its price in
// USD. Completing a payment raises the HR account's employee limit by the
// package size.
var MemberPackages = map[int]decimal.Decimal{
	5:  decimal.NewFromInt(5),
	10: decimal.NewFromInt(8),
	20: decimal.NewFromInt(15),
}

// Payment records a member-package purchase by an HR account. The row is
// created with an intent and marked COMPLETED when the charge succeeds;
// completion is the only path that raises employee_limit.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HrEmail       string          `gorm:"type:varchar(255);not null;index" json:"hr_email"`
	PackageSize   int             `gorm:"type:int;not null" json:"package_size"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'CREATED'" json:"status"`
	TransactionID string          `gorm:"type:varchar(255)" json:"transaction_id"`
	CompletedAt   *time.Time      `json:"completed_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
