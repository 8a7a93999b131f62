package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants. An employee account starts unaffiliated and becomes
// "employee" only once an HR account approves one of its asset requests.
const (
	RoleHR           = "hr"
	RoleEmployee     = "employee"
	RoleUnaffiliated = "unaffiliated"
)

// DefaultEmployeeLimit is the member capacity every new HR account starts
// with. Completed payments raise it.
const DefaultEmployeeLimit = 5

// User represents an account, either an HR (company) account or an
// employee account. Email is the business identity referenced by requests
// and assets; the UUID primary key is internal.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:varchar(255);not null" json:"-"`         // Omit password from JSON requests/responses
	Role     string    `gorm:"type:varchar(20);not null;index" json:"role"` // hr, employee, unaffiliated

	// Company fields. For an HR account these describe its own company;
	// for an employee they mirror the company the employee is affiliated
	// with and are empty while unaffiliated.
	CompanyName string `gorm:"type:varchar(255)" json:"company_name"`
	CompanyLogo string `gorm:"type:text" json:"company_logo"`
	HrEmail     string `gorm:"type:varchar(255);index" json:"hr_email"` // affiliation back-reference, empty when unaffiliated

	// Capacity fields, meaningful only when Role = hr.
	CurrentEmployees int `gorm:"type:int;default:0;not null" json:"current_employees"`
	EmployeeLimit    int `gorm:"type:int;default:5;not null" json:"employee_limit"`

	// Version backs the optimistic compare-and-set used by the capacity
	// and affiliation primitives.
	Version int `gorm:"type:int;default:0;not null" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// AffiliatedWith reports whether the account is currently bound to the
// given HR account.
func (u *User) AffiliatedWith(hrEmail string) bool {
	return u.Role == RoleEmployee && u.HrEmail == hrEmail
}
