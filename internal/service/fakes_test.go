package service

import (
	"context"
	"sync"
	"time"

	"assetverse/internal/model"
	"assetverse/internal/repository"

	"github.com/google/uuid"
)

// memStore backs the in-memory repository fakes. All fakes share one
// store and one mutex so cross-repo interleavings behave like a single
// backing database.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*model.User
	assets    map[uuid.UUID]*model.Asset
	requests  map[uuid.UUID]*model.AssetRequest
	payments  map[uuid.UUID]*model.Payment
	movements []model.AssetMovement
	audits    []model.AuditLog

	// failure injection
	failRevert         bool
	failAssetIncrement bool
	forceCountConflict bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		assets:   make(map[uuid.UUID]*model.Asset),
		requests: make(map[uuid.UUID]*model.AssetRequest),
		payments: make(map[uuid.UUID]*model.Payment),
	}
}

func (m *memStore) addUser(u model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	m.users[u.Email] = &u
	return &u
}

func (m *memStore) addAsset(a model.Asset) *model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	m.assets[a.ID] = &a
	return &a
}

func (m *memStore) addRequest(r model.AssetRequest) *model.AssetRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = model.RequestPending
	}
	r.CreatedAt = time.Now()
	m.requests[r.ID] = &r
	return &r
}

func (m *memStore) user(email string) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[email]
}

func (m *memStore) asset(id uuid.UUID) model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.assets[id]
}

func (m *memStore) request(id uuid.UUID) model.AssetRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.requests[id]
}

func (m *memStore) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.audits))
	for _, a := range m.audits {
		actions = append(actions, a.Action)
	}
	return actions
}

// --- UserRepository fake ---

type fakeUserRepo struct{ s *memStore }

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, exists := f.s.users[user.Email]; exists {
		return repository.ErrStoreUnavailable
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	clone := *user
	f.s.users[user.Email] = &clone
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) List(ctx context.Context, role string, page, limit int) ([]model.User, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var users []model.User
	for _, u := range f.s.users {
		if role == "" || u.Role == role {
			users = append(users, *u)
		}
	}
	return users, int64(len(users)), nil
}

func (f *fakeUserRepo) ListByHr(ctx context.Context, hrEmail string) ([]model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var users []model.User
	for _, u := range f.s.users {
		if u.Role == model.RoleEmployee && u.HrEmail == hrEmail {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, email, name string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	return nil
}

func (f *fakeUserRepo) ReadCapacity(ctx context.Context, hrEmail string) (int, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[hrEmail]
	if !ok || u.Role != model.RoleHR {
		return 0, 0, repository.ErrNotFound
	}
	return u.CurrentEmployees, u.EmployeeLimit, nil
}

func (f *fakeUserRepo) TryAffiliate(ctx context.Context, employeeEmail, hrEmail, companyName, companyLogo string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	emp, ok := f.s.users[employeeEmail]
	if !ok {
		return false, repository.ErrNotFound
	}
	if emp.AffiliatedWith(hrEmail) {
		return false, nil
	}
	if emp.HrEmail != "" && emp.HrEmail != hrEmail {
		return false, repository.ErrAlreadyAffiliated
	}
	emp.Role = model.RoleEmployee
	emp.HrEmail = hrEmail
	emp.CompanyName = companyName
	emp.CompanyLogo = companyLogo
	emp.Version++
	return true, nil
}

func (f *fakeUserRepo) TryIncrementEmployeeCount(ctx context.Context, hrEmail string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.forceCountConflict {
		return repository.ErrCapacityExceeded
	}
	u, ok := f.s.users[hrEmail]
	if !ok || u.Role != model.RoleHR {
		return repository.ErrNotFound
	}
	if u.CurrentEmployees >= u.EmployeeLimit {
		return repository.ErrCapacityExceeded
	}
	u.CurrentEmployees++
	u.Version++
	return nil
}

func (f *fakeUserRepo) DecrementEmployeeCount(ctx context.Context, hrEmail string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[hrEmail]
	if !ok || u.Role != model.RoleHR {
		return nil
	}
	if u.CurrentEmployees > 0 {
		u.CurrentEmployees--
		u.Version++
	}
	return nil
}

func (f *fakeUserRepo) ClearAffiliation(ctx context.Context, employeeEmail, hrEmail string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	emp, ok := f.s.users[employeeEmail]
	if !ok || !emp.AffiliatedWith(hrEmail) {
		return false, nil
	}
	emp.Role = model.RoleUnaffiliated
	emp.HrEmail = ""
	emp.CompanyName = ""
	emp.CompanyLogo = ""
	emp.Version++
	return true, nil
}

func (f *fakeUserRepo) RaiseEmployeeLimit(ctx context.Context, hrEmail string, by int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[hrEmail]
	if !ok || u.Role != model.RoleHR {
		return repository.ErrNotFound
	}
	u.EmployeeLimit += by
	return nil
}

// --- AssetRepository fake ---

type fakeAssetRepo struct{ s *memStore }

func (f *fakeAssetRepo) Create(ctx context.Context, asset *model.Asset) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.CreatedAt = time.Now()
	clone := *asset
	f.s.assets[asset.ID] = &clone
	return nil
}

func (f *fakeAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAssetRepo) List(ctx context.Context, ownerHrEmail, search, productType string, page, limit int) ([]model.Asset, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var assets []model.Asset
	for _, a := range f.s.assets {
		if a.OwnerHrEmail == ownerHrEmail {
			assets = append(assets, *a)
		}
	}
	return assets, int64(len(assets)), nil
}

func (f *fakeAssetRepo) Update(ctx context.Context, id uuid.UUID, productName, productType string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.assets[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ProductName = productName
	a.ProductType = productType
	return nil
}

func (f *fakeAssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.assets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.s.assets, id)
	return nil
}

func (f *fakeAssetRepo) TryDecrement(ctx context.Context, id uuid.UUID) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.assets[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if a.Quantity <= 0 {
		return 0, repository.ErrInsufficientQuantity
	}
	a.Quantity--
	a.Version++
	return a.Quantity, nil
}

func (f *fakeAssetRepo) Increment(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failAssetIncrement {
		return repository.ErrStoreUnavailable
	}
	a, ok := f.s.assets[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Quantity++
	a.Version++
	return nil
}

// --- RequestRepository fake ---

type fakeRequestRepo struct{ s *memStore }

func (f *fakeRequestRepo) Create(ctx context.Context, req *model.AssetRequest) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()
	clone := *req
	f.s.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AssetRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r
	if a, ok := f.s.assets[r.AssetID]; ok {
		assetClone := *a
		clone.Asset = &assetClone
	}
	return &clone, nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterEmail, status string, page, limit int) ([]model.AssetRequest, int64, error) {
	return f.list(func(r *model.AssetRequest) bool {
		return r.RequesterEmail == requesterEmail && (status == "" || r.Status == status)
	})
}

func (f *fakeRequestRepo) ListByHr(ctx context.Context, hrEmail, status string, page, limit int) ([]model.AssetRequest, int64, error) {
	return f.list(func(r *model.AssetRequest) bool {
		return r.HrEmail == hrEmail && (status == "" || r.Status == status)
	})
}

func (f *fakeRequestRepo) list(match func(*model.AssetRequest) bool) ([]model.AssetRequest, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var requests []model.AssetRequest
	for _, r := range f.s.requests {
		if match(r) {
			requests = append(requests, *r)
		}
	}
	return requests, int64(len(requests)), nil
}

func (f *fakeRequestRepo) TryClaimTransition(ctx context.Context, id uuid.UUID, to string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.Status != model.RequestPending {
		return repository.ErrAlreadyProcessed
	}
	now := time.Now()
	r.Status = to
	r.DecidedAt = &now
	return nil
}

func (f *fakeRequestRepo) RevertToPending(ctx context.Context, id uuid.UUID, from string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failRevert {
		return repository.ErrStoreUnavailable
	}
	r, ok := f.s.requests[id]
	if !ok || r.Status != from {
		return repository.ErrNotFound
	}
	r.Status = model.RequestPending
	r.DecidedAt = nil
	return nil
}

// --- MovementRepository fake ---

type fakeMovementRepo struct{ s *memStore }

func (f *fakeMovementRepo) Create(ctx context.Context, movement *model.AssetMovement) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = time.Now()
	f.s.movements = append(f.s.movements, *movement)
	return nil
}

func (f *fakeMovementRepo) ListByAsset(ctx context.Context, assetID uuid.UUID, page, limit int) ([]model.AssetMovement, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var movements []model.AssetMovement
	for _, m := range f.s.movements {
		if m.AssetID == assetID {
			movements = append(movements, m)
		}
	}
	return movements, int64(len(movements)), nil
}

// --- AuditRepository fake ---

type fakeAuditRepo struct{ s *memStore }

func (f *fakeAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	f.s.audits = append(f.s.audits, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, action, actorEmail string, page, limit int) ([]model.AuditLog, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var entries []model.AuditLog
	for _, a := range f.s.audits {
		if (action == "" || a.Action == action) && (actorEmail == "" || a.ActorEmail == actorEmail) {
			entries = append(entries, a)
		}
	}
	return entries, int64(len(entries)), nil
}

// --- PaymentRepository fake ---

type fakePaymentRepo struct{ s *memStore }

func (f *fakePaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	clone := *payment
	f.s.payments[payment.ID] = &clone
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePaymentRepo) ListByHr(ctx context.Context, hrEmail string, page, limit int) ([]model.Payment, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var payments []model.Payment
	for _, p := range f.s.payments {
		if p.HrEmail == hrEmail {
			payments = append(payments, *p)
		}
	}
	return payments, int64(len(payments)), nil
}

func (f *fakePaymentRepo) MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Status != model.PaymentCreated {
		return repository.ErrAlreadyProcessed
	}
	now := time.Now()
	p.Status = model.PaymentCompleted
	p.TransactionID = transactionID
	p.CompletedAt = &now
	return nil
}

// --- TransactionManager fake ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
