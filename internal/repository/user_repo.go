package repository

import (
	"context"
	"errors"
	"fmt"

	"assetverse/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines data access for accounts. The approval workflow
// mutates accounts exclusively through the atomic primitives below; the
// plain CRUD methods are for the account-facing collaborator surface and
// never touch capacity or affiliation fields directly.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error)
	ListByHr(ctx context.Context, hrEmail string) ([]model.User, error)
	UpdateProfile(ctx context.Context, email, name string) error

	// Atomic primitives.
	ReadCapacity(ctx context.Context, hrEmail string) (current, limit int, err error)
	TryAffiliate(ctx context.Context, employeeEmail, hrEmail, companyName, companyLogo string) (changed bool, err error)
	TryIncrementEmployeeCount(ctx context.Context, hrEmail string) error
	DecrementEmployeeCount(ctx context.Context, hrEmail string) error
	ClearAffiliation(ctx context.Context, employeeEmail, hrEmail string) (changed bool, err error)
	RaiseEmployeeLimit(ctx context.Context, hrEmail string, by int) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// wrapStoreErr maps gorm errors into the repository taxonomy.
func wrapStoreErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := GetDB(ctx, r.db).Create(user).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapStoreErr(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	offset := (page - 1) * limit
	fetch := db.Order("created_at DESC").Offset(offset).Limit(limit)
	if role != "" {
		fetch = fetch.Where("role = ?", role)
	}
	if err := fetch.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return users, total, nil
}

func (r *userRepository) ListByHr(ctx context.Context, hrEmail string) ([]model.User, error) {
	var users []model.User
	err := GetDB(ctx, r.db).
		Where("hr_email = ? AND role = ?", hrEmail, model.RoleEmployee).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, email, name string) error {
	res := GetDB(ctx, r.db).Model(&model.User{}).Where("email = ?", email).Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ReadCapacity(ctx context.Context, hrEmail string) (int, int, error) {
	var user model.User
	err := GetDB(ctx, r.db).First(&user, "email = ? AND role = ?", hrEmail, model.RoleHR).Error
	if err != nil {
		return 0, 0, wrapStoreErr(err)
	}
	return user.CurrentEmployees, user.EmployeeLimit, nil
}

// TryAffiliate binds an employee to an HR account. Re-affiliating to the
// same HR is a no-op success (changed = false); an employee bound
// elsewhere fails with ErrAlreadyAffiliated. Optimistic CAS on the
// version column with bounded retry.
func (r *userRepository) TryAffiliate(ctx context.Context, employeeEmail, hrEmail, companyName, companyLogo string) (bool, error) {
	db := GetDB(ctx, r.db)
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var emp model.User
		if err := db.First(&emp, "email = ?", employeeEmail).Error; err != nil {
			return false, wrapStoreErr(err)
		}

		if emp.AffiliatedWith(hrEmail) {
			return false, nil
		}
		if emp.HrEmail != "" && emp.HrEmail != hrEmail {
			return false, ErrAlreadyAffiliated
		}

		res := db.Model(&model.User{}).
			Where("email = ? AND version = ?", employeeEmail, emp.Version).
			Updates(map[string]interface{}{
				"role":         model.RoleEmployee,
				"hr_email":     hrEmail,
				"company_name": companyName,
				"company_logo": companyLogo,
				"version":      emp.Version + 1,
			})
		if res.Error != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
		}
		if res.RowsAffected > 0 {
			return true, nil
		}
		// Lost the version race, re-read and retry.
	}
	return false, fmt.Errorf("%w: affiliation conflict for %s", ErrStoreUnavailable, employeeEmail)
}

// TryIncrementEmployeeCount raises the HR head count by one unless the
// account is at its limit. The limit is re-read on every attempt so a
// payment raising it mid-flight is honored.
func (r *userRepository) TryIncrementEmployeeCount(ctx context.Context, hrEmail string) error {
	db := GetDB(ctx, r.db)
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var hr model.User
		if err := db.First(&hr, "email = ? AND role = ?", hrEmail, model.RoleHR).Error; err != nil {
			return wrapStoreErr(err)
		}

		if hr.CurrentEmployees >= hr.EmployeeLimit {
			return ErrCapacityExceeded
		}

		res := db.Model(&model.User{}).
			Where("email = ? AND version = ?", hrEmail, hr.Version).
			Updates(map[string]interface{}{
				"current_employees": hr.CurrentEmployees + 1,
				"version":           hr.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: capacity conflict for %s", ErrStoreUnavailable, hrEmail)
}

// DecrementEmployeeCount lowers the head count by one, never below zero.
// A count already at zero is a no-op.
func (r *userRepository) DecrementEmployeeCount(ctx context.Context, hrEmail string) error {
	res := GetDB(ctx, r.db).Model(&model.User{}).
		Where("email = ? AND role = ? AND current_employees > 0", hrEmail, model.RoleHR).
		Updates(map[string]interface{}{
			"current_employees": gorm.Expr("current_employees - 1"),
			"version":           gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	return nil
}

// ClearAffiliation detaches an employee from the given HR account. A
// guarded single UPDATE: only an employee currently bound to that HR is
// touched, so the call is a no-op (changed = false) otherwise.
func (r *userRepository) ClearAffiliation(ctx context.Context, employeeEmail, hrEmail string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.User{}).
		Where("email = ? AND hr_email = ? AND role = ?", employeeEmail, hrEmail, model.RoleEmployee).
		Updates(map[string]interface{}{
			"role":         model.RoleUnaffiliated,
			"hr_email":     "",
			"company_name": "",
			"company_logo": "",
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) RaiseEmployeeLimit(ctx context.Context, hrEmail string, by int) error {
	res := GetDB(ctx, r.db).Model(&model.User{}).
		Where("email = ? AND role = ?", hrEmail, model.RoleHR).
		Update("employee_limit", gorm.Expr("employee_limit + ?", by))
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
