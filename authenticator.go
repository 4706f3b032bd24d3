package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Auther is the front door: it verifies credentials through the identity
// provider and delegates session issuance to the SessionManager.
type Auther struct {
	provider IdentityProvider
	sessions *SessionManager
	logger   Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, sessions *SessionManager) *Auther {
	return &Auther{
		provider: provider,
		sessions: sessions,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// SessionManager returns the SessionManager instance used by this Authenticator
func (s *Auther) SessionManager() *SessionManager {
	return s.sessions
}

// Login verifies credentials and creates a session for the identity.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		return nil, ErrIdentityNotFound
	}

	return s.sessions.CreateSession(ctx, identity)
}

// Signup registers the user and immediately creates their first session.
func (s *Auther) Signup(ctx context.Context, users Users, record *User, password string) (*TokenPair, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	record.PasswordHash = hash

	created, err := users.Register(ctx, record)
	if err != nil {
		s.logger.Error("Signup failed to register user", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register user")
	}

	return s.sessions.CreateSession(ctx, identityFromUser(created))
}

// Logout revokes the presented session. Idempotent; the count mirrors
// SessionManager.RevokeSession.
func (s *Auther) Logout(ctx context.Context, refreshToken string) (int, error) {
	return s.sessions.RevokeSession(ctx, refreshToken)
}
