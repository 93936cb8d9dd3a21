package api_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/profilestore"
	"github.com/sonatahq/sonata-api/pkg/reconcile"
)

// MockEngine is a mock implementation of api.Engine.
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) CreateAccount(ctx context.Context, in reconcile.CreateAccountInput) (reconcile.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(reconcile.User), args.Error(1)
}

func (m *MockEngine) Authenticate(ctx context.Context, email, password string) (reconcile.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(reconcile.User), args.Error(1)
}

func (m *MockEngine) GetUser(ctx context.Context, id string) (reconcile.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(reconcile.User), args.Error(1)
}

func (m *MockEngine) ReconcileOAuth(ctx context.Context, identityID string, claims identity.OAuthClaims, mode reconcile.Mode) (reconcile.User, error) {
	args := m.Called(ctx, identityID, claims, mode)
	return args.Get(0).(reconcile.User), args.Error(1)
}

func (m *MockEngine) PersistClaims(ctx context.Context, u reconcile.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockEngine) CompleteProfile(ctx context.Context, userID string, in reconcile.ProfileInput) (reconcile.User, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(reconcile.User), args.Error(1)
}

func (m *MockEngine) DeleteAccount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockEngine) SearchTeachers(ctx context.Context, query string) ([]profilestore.TeacherSummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profilestore.TeacherSummary), args.Error(1)
}

// MockPasswords is a mock implementation of api.PasswordService.
type MockPasswords struct {
	mock.Mock
}

func (m *MockPasswords) Forgot(ctx context.Context, email string) {
	m.Called(ctx, email)
}

func (m *MockPasswords) Reset(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

func (m *MockPasswords) Change(ctx context.Context, userID, currentPassword, newPassword string) error {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Error(0)
}

// MockExchanger is a mock implementation of api.OAuthExchanger.
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockExchanger) Exchange(ctx context.Context, code string) (identity.OAuthClaims, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(identity.OAuthClaims), args.Error(1)
}

// MockDirectory is a mock implementation of api.IdentityDirectory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindByEmail(ctx context.Context, email string) (identity.Record, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(identity.Record), args.Error(1)
}

func (m *MockDirectory) CreateOAuthAccount(ctx context.Context, email string, meta map[string]any) (identity.Record, error) {
	args := m.Called(ctx, email, meta)
	return args.Get(0).(identity.Record), args.Error(1)
}
