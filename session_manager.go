package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenPair is what a successful login, signup, or renewal hands back to
// the caller: a short-lived signed access token and the opaque refresh
// token identifying the session row.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// OwnerStore is the narrow user-store surface session renewal and bulk
// revocation need. The full Users repository satisfies it.
type OwnerStore interface {
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
}

// SessionStore is the persistence contract consumed by SessionManager. The
// full RefreshTokens repository satisfies it.
type SessionStore interface {
	Create(ctx context.Context, ownerID uuid.UUID, token string, expiresAt time.Time) (*RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	FindAllValid(ctx context.Context, ownerID uuid.UUID) ([]*RefreshToken, error)
	MarkRevoked(ctx context.Context, row *RefreshToken) error
	DeleteExpired(ctx context.Context) (int, error)
}

// SessionManager orchestrates session creation, renewal, and revocation on
// top of the refresh-token store and the token service.
type SessionManager struct {
	tokens     TokenService
	users      OwnerStore
	store      SessionStore
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

// NewSessionManager returns a new SessionManager
func NewSessionManager(tokens TokenService, users OwnerStore, store SessionStore, cfg Config) *SessionManager {
	return &SessionManager{
		tokens:     tokens,
		users:      users,
		store:      store,
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
		logger:     defLogger{},
	}
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	m.logger = logger
	return m
}

// CreateSession issues a token pair for an already verified identity:
// a cryptographically unguessable opaque refresh string persisted with
// expiry = now + refresh TTL, and an access token with the configured
// short TTL.
func (m *SessionManager) CreateSession(ctx context.Context, identity Identity) (*TokenPair, error) {
	if identity == nil {
		return nil, ErrIdentityNotFound
	}

	ownerID, err := uuid.Parse(identity.ID())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "identity id is not a valid uuid")
	}

	opaque, err := generateOpaqueToken()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate refresh token")
	}

	if _, err := m.store.Create(ctx, ownerID, opaque, time.Now().Add(m.refreshTTL)); err != nil {
		m.logger.Error("CreateSession failed to persist refresh token", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	accessToken, err := m.tokens.Generate(identity, m.accessTTL)
	if err != nil {
		m.logger.Error("CreateSession failed to issue access token", "error", err)
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: opaque,
	}, nil
}

// IsUsable reports whether a session row can still mint access tokens:
// not revoked and not past expiry at call time.
func (m *SessionManager) IsUsable(row *RefreshToken) bool {
	if row == nil {
		return false
	}
	return !row.Revoked && time.Now().Before(row.ExpiresAt)
}

// RenewAccessToken exchanges a refresh token for a fresh access token. The
// new token is built from the owner's current user record, not from any
// previously issued token, so role and name changes are picked up here.
// The refresh token itself is returned unchanged; there is no rotation.
func (m *SessionManager) RenewAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	row, err := m.store.FindByToken(ctx, refreshToken)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	if !m.IsUsable(row) {
		return nil, ErrRefreshTokenUnusable
	}

	owner, err := m.users.GetByIdentifier(ctx, row.UserID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session owner")
	}

	accessToken, err := m.tokens.Generate(identityFromUser(owner), m.accessTTL)
	if err != nil {
		m.logger.Error("RenewAccessToken failed to issue access token", "error", err)
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RevokeSession marks the matching session row revoked. It is idempotent:
// an absent or already-revoked token yields 0, a first-time match yields 1.
// Access tokens already issued from the session stay valid until their own
// expiry; there is no denylist (bounded by the short access TTL).
func (m *SessionManager) RevokeSession(ctx context.Context, refreshToken string) (int, error) {
	row, err := m.store.FindByToken(ctx, refreshToken)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return 0, nil
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	if row.Revoked {
		return 0, nil
	}

	if err := m.store.MarkRevoked(ctx, row); err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session")
	}

	return 1, nil
}

// RevokeAllSessions marks every currently valid session for the owner
// revoked and returns the count. Calling it again right away yields 0.
// Enumerate-then-mutate: a session created concurrently may be missed;
// that only affects the new session and never corrupts revoked state.
func (m *SessionManager) RevokeAllSessions(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if _, err := m.users.GetByIdentifier(ctx, ownerID.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return 0, ErrUserNotFound
		}
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load session owner")
	}

	rows, err := m.store.FindAllValid(ctx, ownerID)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to enumerate sessions")
	}

	revoked := 0
	for _, row := range rows {
		if err := m.store.MarkRevoked(ctx, row); err != nil {
			return revoked, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke session")
		}
		revoked++
	}

	return revoked, nil
}

// SweepExpired proactively deletes rows past expiry.
func (m *SessionManager) SweepExpired(ctx context.Context) (int, error) {
	return m.store.DeleteExpired(ctx)
}

const opaqueTokenBytes = 32

// generateOpaqueToken returns a url-safe random string. 256 bits of
// entropy keeps collisions and guessing out of reach.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
