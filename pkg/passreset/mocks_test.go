package passreset_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sonatahq/sonata-api/pkg/identity"
	"github.com/sonatahq/sonata-api/pkg/mailer"
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

// MockSender is a mock implementation of mailer.EmailSender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, params mailer.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
