package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// UserTracker is a store we can use to retrieve users
type UserTracker interface {
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// UserProvider verifies credentials against the user store. It is the
// collaborator that feeds SessionManager an already verified identity; the
// session core never sees raw passwords.
type UserProvider struct {
	store     UserTracker
	passwords PasswordAuthenticator
	Validator func(*User) error
	logger    Logger
}

// MaxLoginAttempts is the maximun number of attempts a user gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = 24 * time.Hour

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:     store,
		passwords: NewPasswordHasher(),
		logger:    defLogger{},
		Validator: defaultValidator,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = l
	return u
}

// WithPasswordAuthenticator swaps the password verification strategy, e.g.
// a hasher at a different cost.
func (u *UserProvider) WithPasswordAuthenticator(p PasswordAuthenticator) *UserProvider {
	if p != nil {
		u.passwords = p
	}
	return u
}

func (u *UserProvider) validate(user *User) error {
	if u.Validator != nil {
		return u.Validator(user)
	}
	return defaultValidator(user)
}

// VerifyIdentity will find the user, compare to the password, and return identity
func (u UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if user.LoginAttemptAt != nil && time.Since(*user.LoginAttemptAt) > CoolDownPeriod {
		user.LoginAttempts = 0
	}

	// if we have too many attempts in the given window, cool off!
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := u.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		// We have to increment the login_attempts counter and login_attempt_at
		if err2 := u.store.TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	// reset the login_attempts counter and login_attempt_at
	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

func (u UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id        string
	username  string
	email     string
	role      string
	createdAt *time.Time
	updatedAt *time.Time
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() string {
	return a.role
}

func (a authIdentity) CreatedAt() *time.Time {
	return a.createdAt
}

func (a authIdentity) UpdatedAt() *time.Time {
	return a.updatedAt
}

var (
	_ Identity            = authIdentity{}
	_ TimestampedIdentity = authIdentity{}
)

func identityFromUser(user *User) Identity {
	return authIdentity{
		id:        user.ID.String(),
		username:  user.Username,
		email:     user.Email,
		role:      string(user.Role),
		createdAt: user.CreatedAt,
		updatedAt: user.UpdatedAt,
	}
}

func defaultValidator(u *User) error {
	err := validation.ValidateStruct(u,
		validation.Field(&u.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.Role, validation.Required, validation.By(validRole)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "user record failed validation").
			WithTextCode("INVALID_USER").
			WithMetadata(map[string]any{"user_id": u.ID.String()})
	}
	return nil
}

func validRole(value any) error {
	role, _ := value.(UserRole)
	if !IsValidRole(role) {
		return goerrors.New("user has an unknown or invalid role", goerrors.CategoryAuth).
			WithTextCode("INVALID_ROLE")
	}
	return nil
}
