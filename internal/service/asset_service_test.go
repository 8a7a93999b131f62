package service

import (
	"context"
	"testing"

	"assetverse/internal/model"
	"assetverse/internal/repository"

	"github.com/stretchr/testify/require"
)

func newAssetService(store *memStore) AssetService {
	return NewAssetService(
		&fakeAssetRepo{store},
		&fakeMovementRepo{store},
		&fakeAuditRepo{store},
		fakeTxManager{},
	)
}

func TestCreateAsset(t *testing.T) {
	store := newMemStore()
	svc := newAssetService(store)

	resp, err := svc.CreateAsset(context.Background(), "hr@acme.io", CreateAssetRequest{
		ProductName: "MacBook Pro",
		ProductType: model.AssetTypeReturnable,
		Quantity:    3,
	})
	require.NoError(t, err)
	require.Equal(t, "hr@acme.io", resp.OwnerHrEmail)
	require.Equal(t, 3, resp.Quantity)
	require.Contains(t, store.auditActions(), model.ActionCreateAsset)
}

func TestUpdateAsset_NonOwnerHidden(t *testing.T) {
	store := newMemStore()
	asset := store.addAsset(model.Asset{OwnerHrEmail: "hr@acme.io", ProductName: "Monitor", ProductType: model.AssetTypeReturnable, Quantity: 1})

	svc := newAssetService(store)
	_, err := svc.UpdateAsset(context.Background(), "hr@corp.io", asset.ID.String(), UpdateAssetRequest{
		ProductName: "Monitor 27\"",
		ProductType: model.AssetTypeReturnable,
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Equal(t, "Monitor", store.asset(asset.ID).ProductName)
}

func TestUpdateAsset_DoesNotTouchQuantity(t *testing.T) {
	store := newMemStore()
	asset := store.addAsset(model.Asset{OwnerHrEmail: "hr@acme.io", ProductName: "Monitor", ProductType: model.AssetTypeReturnable, Quantity: 4})

	svc := newAssetService(store)
	resp, err := svc.UpdateAsset(context.Background(), "hr@acme.io", asset.ID.String(), UpdateAssetRequest{
		ProductName: "Monitor 27\"",
		ProductType: model.AssetTypeNonReturnable,
	})
	require.NoError(t, err)
	require.Equal(t, "Monitor 27\"", resp.ProductName)
	require.Equal(t, 4, store.asset(asset.ID).Quantity)
}

func TestDeleteAsset(t *testing.T) {
	store := newMemStore()
	asset := store.addAsset(model.Asset{OwnerHrEmail: "hr@acme.io", ProductName: "Chair", ProductType: model.AssetTypeNonReturnable, Quantity: 2})

	svc := newAssetService(store)
	err := svc.DeleteAsset(context.Background(), "hr@acme.io", asset.ID.String())
	require.NoError(t, err)

	_, err = svc.GetAsset(context.Background(), asset.ID.String())
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Contains(t, store.auditActions(), model.ActionDeleteAsset)
}

func TestListMovements_AfterApproval(t *testing.T) {
	store := newMemStore()
	hr := store.addUser(model.User{Email: "hr@acme.io", Role: model.RoleHR, CompanyName: "Acme", EmployeeLimit: 5})
	emp := store.addUser(model.User{Email: "dev@mail.io", Role: model.RoleUnaffiliated})
	asset := store.addAsset(model.Asset{OwnerHrEmail: hr.Email, ProductName: "Laptop", ProductType: model.AssetTypeReturnable, Quantity: 1})
	req := store.addRequest(model.AssetRequest{RequesterEmail: emp.Email, AssetID: asset.ID, HrEmail: hr.Email})

	_, err := newApprovalService(store).Approve(context.Background(), req.ID.String(), hr.Email)
	require.NoError(t, err)

	movements, total, err := newAssetService(store).ListMovements(context.Background(), asset.ID.String(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, model.MovementOut, movements[0].MovementType)
	require.Equal(t, req.ID.String(), movements[0].RequestID)
}
