package service

import (
	"context"
	"testing"

	"assetverse/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_HrGetsDefaultLimit(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store})

	resp, err := svc.Register(context.Background(), RegisterUserRequest{
		Name:        "Acme HR",
		Email:       "hr@acme.io",
		Password:    "secret123",
		Role:        "hr",
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleHR, resp.Role)
	require.Equal(t, model.DefaultEmployeeLimit, resp.EmployeeLimit)
	require.Equal(t, 0, resp.CurrentEmployees)

	// The stored password is a bcrypt hash, never the plaintext.
	stored := store.user("hr@acme.io")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestRegister_HrRequiresCompanyName(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store})

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Name:     "Acme HR",
		Email:    "hr@acme.io",
		Password: "secret123",
		Role:     "hr",
	})
	require.Error(t, err)
}

func TestRegister_EmployeeStartsUnaffiliated(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store})

	resp, err := svc.Register(context.Background(), RegisterUserRequest{
		Name:     "Dev",
		Email:    "dev@mail.io",
		Password: "secret123",
		Role:     "employee",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleUnaffiliated, resp.Role)
	require.Empty(t, resp.HrEmail)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store})

	req := RegisterUserRequest{
		Name:     "Dev",
		Email:    "dev@mail.io",
		Password: "secret123",
		Role:     "employee",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store})

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Name:        "Acme HR",
		Email:       "hr@acme.io",
		Password:    "secret123",
		Role:        "hr",
		CompanyName: "Acme",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginUserRequest{
		Email:    "hr@acme.io",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("default_super_secret_key"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "hr@acme.io", claims["sub"])
	require.Equal(t, model.RoleHR, claims["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store})

	_, err := svc.Register(context.Background(), RegisterUserRequest{
		Name:     "Dev",
		Email:    "dev@mail.io",
		Password: "secret123",
		Role:     "employee",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginUserRequest{
		Email:    "dev@mail.io",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestListMyEmployees(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{Email: "hr@acme.io", Role: model.RoleHR, CompanyName: "Acme", EmployeeLimit: 5})
	store.addUser(model.User{Email: "a@mail.io", Role: model.RoleEmployee, HrEmail: "hr@acme.io"})
	store.addUser(model.User{Email: "b@mail.io", Role: model.RoleEmployee, HrEmail: "other@corp.io"})
	store.addUser(model.User{Email: "c@mail.io", Role: model.RoleUnaffiliated})

	svc := NewUserService(&fakeUserRepo{store})
	employees, err := svc.ListMyEmployees(context.Background(), "hr@acme.io")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	require.Equal(t, "a@mail.io", employees[0].Email)
}

func TestUpdateProfile(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{Email: "dev@mail.io", Name: "Dev", Role: model.RoleUnaffiliated})

	svc := NewUserService(&fakeUserRepo{store})
	resp, err := svc.UpdateProfile(context.Background(), "dev@mail.io", UpdateProfileRequest{Name: "Dev Renamed"})
	require.NoError(t, err)
	require.Equal(t, "Dev Renamed", resp.Name)
	require.Equal(t, "Dev Renamed", store.user("dev@mail.io").Name)
}
