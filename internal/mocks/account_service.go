package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// MockAccountService implements service.AccountService for testing.
// Users backs GetUser when GetUserFn is nil.
type MockAccountService struct {
	AuthenticateFn         func(ctx context.Context, username, password string) (*service.AuthResult, error)
	GetUserFn              func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	CreateAccountFn        func(ctx context.Context, params service.NewAccountParams) (*domain.User, error)
	SetActiveFn            func(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error)
	EnsureBootstrapAdminFn func(ctx context.Context, admin service.BootstrapAdmin) (bool, error)
	ListUsersFn            func(ctx context.Context, page store.Page) ([]domain.UserWithStats, error)

	Users map[uuid.UUID]*domain.User
	Err   error
}

var _ service.AccountService = (*MockAccountService)(nil)

// NewMockAccountService creates a mock that knows the given accounts.
func NewMockAccountService(users ...*domain.User) *MockAccountService {
	m := &MockAccountService{Users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

// Authenticate implements service.AccountService
func (m *MockAccountService) Authenticate(ctx context.Context, username, password string) (*service.AuthResult, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, username, password)
	}
	return nil, m.Err
}

// GetUser implements service.AccountService
func (m *MockAccountService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.Users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// CreateAccount implements service.AccountService
func (m *MockAccountService) CreateAccount(ctx context.Context, params service.NewAccountParams) (*domain.User, error) {
	if m.CreateAccountFn != nil {
		return m.CreateAccountFn(ctx, params)
	}
	return nil, m.Err
}

// SetActive implements service.AccountService
func (m *MockAccountService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error) {
	if m.SetActiveFn != nil {
		return m.SetActiveFn(ctx, userID, active)
	}
	return nil, m.Err
}

// EnsureBootstrapAdmin implements service.AccountService
func (m *MockAccountService) EnsureBootstrapAdmin(ctx context.Context, admin service.BootstrapAdmin) (bool, error) {
	if m.EnsureBootstrapAdminFn != nil {
		return m.EnsureBootstrapAdminFn(ctx, admin)
	}
	return false, m.Err
}

// ListUsers implements service.AccountService
func (m *MockAccountService) ListUsers(ctx context.Context, page store.Page) ([]domain.UserWithStats, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx, page)
	}
	return nil, m.Err
}
