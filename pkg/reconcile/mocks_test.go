package reconcile_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/profilestore"
)

// MockProvider is a mock implementation of identity.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateAccount(ctx context.Context, email, password string, meta map[string]any) (identity.Record, error) {
	args := m.Called(ctx, email, password, meta)
	return args.Get(0).(identity.Record), args.Error(1)
}

func (m *MockProvider) CreateOAuthAccount(ctx context.Context, email string, meta map[string]any) (identity.Record, error) {
	args := m.Called(ctx, email, meta)
	return args.Get(0).(identity.Record), args.Error(1)
}

func (m *MockProvider) Authenticate(ctx context.Context, email, password string) (identity.Record, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Record), args.Error(1)
}

func (m *MockProvider) GetByID(ctx context.Context, id string) (identity.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(identity.Record), args.Error(1)
}

func (m *MockProvider) FindByEmail(ctx context.Context, email string) (identity.Record, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(identity.Record), args.Error(1)
}

func (m *MockProvider) UpdateMetadata(ctx context.Context, id string, meta map[string]any) error {
	args := m.Called(ctx, id, meta)
	return args.Error(0)
}

func (m *MockProvider) UpdatePassword(ctx context.Context, id, password string) error {
	args := m.Called(ctx, id, password)
	return args.Error(0)
}

func (m *MockProvider) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProvider) SendPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockProvider) VerifyResetToken(ctx context.Context, token string) (identity.Record, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(identity.Record), args.Error(1)
}

// MockStore is a mock implementation of profilestore.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertBaseProfile(ctx context.Context, p profilestore.BaseProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) UpsertTeacherExtension(ctx context.Context, userID string, ext profilestore.TeacherExtension) error {
	args := m.Called(ctx, userID, ext)
	return args.Error(0)
}

func (m *MockStore) UpsertParentExtension(ctx context.Context, userID string, ext profilestore.ParentExtension) error {
	args := m.Called(ctx, userID, ext)
	return args.Error(0)
}

func (m *MockStore) GetProfile(ctx context.Context, userID string) (profilestore.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(profilestore.Profile), args.Error(1)
}

func (m *MockStore) DeleteProfile(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStore) SearchTeachers(ctx context.Context, query string) ([]profilestore.TeacherSummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profilestore.TeacherSummary), args.Error(1)
}

// MockStorage is a mock implementation of objectstore.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, ownerID string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, ownerID, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, storageRef string) error {
	args := m.Called(ctx, storageRef)
	return args.Error(0)
}

func (m *MockStorage) SignedURL(ctx context.Context, storageRef string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, storageRef, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeleteAllExcept(ctx context.Context, ownerID, keepRef string) error {
	args := m.Called(ctx, ownerID, keepRef)
	return args.Error(0)
}
