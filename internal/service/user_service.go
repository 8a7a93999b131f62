package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"assetverse/internal/model"
	"assetverse/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type RegisterUserRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Role        string `json:"role" binding:"required,oneof=hr employee"`
	CompanyName string `json:"company_name"`
	CompanyLogo string `json:"company_logo"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning a user without exposing sensitive data
type UserResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	CompanyName      string `json:"company_name"`
	CompanyLogo      string `json:"company_logo"`
	HrEmail          string `json:"hr_email"`
	CurrentEmployees int    `json:"current_employees"`
	EmployeeLimit    int    `json:"employee_limit"`
	CreatedAt        string `json:"created_at"`
}

// UserService defines the interface for business logic related to accounts
type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetUserByEmail(ctx context.Context, email string) (*UserResponse, error)
	ListUsers(ctx context.Context, role string, page, limit int) ([]UserResponse, int64, error)
	ListMyEmployees(ctx context.Context, hrEmail string) ([]UserResponse, error)
	UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (*UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Helper: parse model to standard json API response
func mapToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:               user.ID.String(),
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		CompanyName:      user.CompanyName,
		CompanyLogo:      user.CompanyLogo,
		HrEmail:          user.HrEmail,
		CurrentEmployees: user.CurrentEmployees,
		EmployeeLimit:    user.EmployeeLimit,
		CreatedAt:        user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) Register(ctx context.Context, req RegisterUserRequest) (*UserResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	switch req.Role {
	case model.RoleHR:
		if req.CompanyName == "" {
			return nil, errors.New("company_name is required for hr accounts")
		}
		user.Role = model.RoleHR
		user.CompanyName = req.CompanyName
		user.CompanyLogo = req.CompanyLogo
		user.EmployeeLimit = model.DefaultEmployeeLimit
	default:
		// Employees join unaffiliated; approval of a request binds them
		// to a company.
		user.Role = model.RoleUnaffiliated
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return mapToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.Email,
		"role": user.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return mapToUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, role string, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, role, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapToUserResponse(&u))
	}

	return responses, total, nil
}

func (s *userService) ListMyEmployees(ctx context.Context, hrEmail string) ([]UserResponse, error) {
	users, err := s.repo.ListByHr(ctx, hrEmail)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, *mapToUserResponse(&u))
	}

	return responses, nil
}

func (s *userService) UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (*UserResponse, error) {
	if err := s.repo.UpdateProfile(ctx, email, req.Name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, err
	}
	return s.GetUserByEmail(ctx, email)
}
