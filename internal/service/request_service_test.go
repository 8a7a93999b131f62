package service

import (
	"context"
	"testing"

	"assetverse/internal/model"
	"assetverse/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newRequestService(store *memStore) RequestService {
	return NewRequestService(
		&fakeRequestRepo{store},
		&fakeAssetRepo{store},
		&fakeUserRepo{store},
		&fakeAuditRepo{store},
		fakeTxManager{},
	)
}

func TestCreateRequest(t *testing.T) {
	store := newMemStore()
	hr := store.addUser(model.User{Email: "hr@acme.io", Role: model.RoleHR, CompanyName: "Acme", EmployeeLimit: 5})
	emp := store.addUser(model.User{Email: "dev@mail.io", Name: "Dev", Role: model.RoleUnaffiliated})
	asset := store.addAsset(model.Asset{OwnerHrEmail: hr.Email, ProductName: "MacBook Pro", ProductType: model.AssetTypeReturnable, Quantity: 2})

	svc := newRequestService(store)
	resp, err := svc.CreateRequest(context.Background(), emp.Email, CreateRequestDTO{
		AssetID: asset.ID.String(),
		Note:    "starting Monday",
	})
	require.NoError(t, err)
	require.Equal(t, model.RequestPending, resp.Status)
	require.Equal(t, hr.Email, resp.HrEmail)
	require.Equal(t, "MacBook Pro", resp.AssetName)
	require.Equal(t, "Dev", resp.RequesterName)
	require.Nil(t, resp.DecidedAt)

	// Creating a request never touches inventory.
	require.Equal(t, 2, store.asset(asset.ID).Quantity)
	require.Contains(t, store.auditActions(), model.ActionCreateRequest)
}

func TestCreateRequest_UnknownAsset(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{Email: "dev@mail.io", Role: model.RoleUnaffiliated})

	svc := newRequestService(store)
	_, err := svc.CreateRequest(context.Background(), "dev@mail.io", CreateRequestDTO{
		AssetID: uuid.NewString(),
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateRequest_BadAssetID(t *testing.T) {
	store := newMemStore()
	svc := newRequestService(store)

	_, err := svc.CreateRequest(context.Background(), "dev@mail.io", CreateRequestDTO{
		AssetID: "not-a-uuid",
	})
	require.Error(t, err)
}

func TestListRequests_ScopedByCaller(t *testing.T) {
	store := newMemStore()
	hr := store.addUser(model.User{Email: "hr@acme.io", Role: model.RoleHR, EmployeeLimit: 5})
	asset := store.addAsset(model.Asset{OwnerHrEmail: hr.Email, ProductName: "Monitor", Quantity: 1})
	store.addRequest(model.AssetRequest{RequesterEmail: "a@mail.io", AssetID: asset.ID, HrEmail: hr.Email})
	store.addRequest(model.AssetRequest{RequesterEmail: "b@mail.io", AssetID: asset.ID, HrEmail: hr.Email})
	store.addRequest(model.AssetRequest{RequesterEmail: "a@mail.io", AssetID: asset.ID, HrEmail: "other@corp.io"})

	svc := newRequestService(store)

	mine, total, err := svc.ListMyRequests(context.Background(), "a@mail.io", RequestFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, mine, 2)

	inbox, total, err := svc.ListHrRequests(context.Background(), hr.Email, RequestFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, inbox, 2)
}

func TestListRequests_StatusFilter(t *testing.T) {
	store := newMemStore()
	hr := store.addUser(model.User{Email: "hr@acme.io", Role: model.RoleHR, EmployeeLimit: 5})
	asset := store.addAsset(model.Asset{OwnerHrEmail: hr.Email, ProductName: "Monitor", Quantity: 1})
	store.addRequest(model.AssetRequest{RequesterEmail: "a@mail.io", AssetID: asset.ID, HrEmail: hr.Email})
	store.addRequest(model.AssetRequest{RequesterEmail: "a@mail.io", AssetID: asset.ID, HrEmail: hr.Email, Status: model.RequestRejected})

	svc := newRequestService(store)
	pending, _, err := svc.ListMyRequests(context.Background(), "a@mail.io", RequestFilter{Status: model.RequestPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, model.RequestPending, pending[0].Status)
}
