package auth_test

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/corvallis/go-auth"
)

// TestIdentity is a plain Identity implementation for tests
type TestIdentity struct {
	id        string
	username  string
	email     string
	role      string
	createdAt *time.Time
	updatedAt *time.Time
}

func (t TestIdentity) ID() string { return t.id }
func (t TestIdentity) Username() string { return t.username }
func (t TestIdentity) Email() string { return t.email }
func (t TestIdentity) Role() string { return t.role }
func (t TestIdentity) CreatedAt() *time.Time { return t.createdAt }
func (t TestIdentity) UpdatedAt() *time.Time { return t.updatedAt }

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// discardLogger swallows codec logging so failure-path tests stay quiet.
type discardLogger struct{}

func (discardLogger) Debug(format string, args ...any) {}
func (discardLogger) Info(format string, args ...any)  {}
func (discardLogger) Error(format string, args ...any) {}

// mockConfig implements auth.Config
type mockConfig struct {
	signingKey string
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   []string
}

func newMockConfig() mockConfig {
	return mockConfig{
		signingKey: "test-signing-key",
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		issuer:     "test-issuer",
	}
}

func (c mockConfig) GetSigningKey() string { return c.signingKey }
func (c mockConfig) GetAccessTokenTTL() time.Duration { return c.accessTTL }
func (c mockConfig) GetRefreshTokenTTL() time.Duration { return c.refreshTTL }
func (c mockConfig) GetIssuer() string { return c.issuer }
func (c mockConfig) GetAudience() []string { return c.audience }
func (c mockConfig) GetContextKey() string { return "user" }
func (c mockConfig) GetTokenLookup() string { return "header:Authorization" }
func (c mockConfig) GetAuthScheme() string { return "Bearer" }

// MockOwnerStore implements auth.OwnerStore
type MockOwnerStore struct {
	mock.Mock
}

func (m *MockOwnerStore) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// MockSessionStore implements auth.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, ownerID uuid.UUID, token string, expiresAt time.Time) (*auth.RefreshToken, error) {
	args := m.Called(ctx, ownerID, token, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshToken), args.Error(1)
}

func (m *MockSessionStore) FindByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshToken), args.Error(1)
}

func (m *MockSessionStore) FindAllValid(ctx context.Context, ownerID uuid.UUID) ([]*auth.RefreshToken, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auth.RefreshToken), args.Error(1)
}

func (m *MockSessionStore) MarkRevoked(ctx context.Context, row *auth.RefreshToken) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockUserTracker implements auth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
