package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims with authority checking
type AuthClaims interface {
	Subject() string
	UserID() string
	Name() string
	Role() string
	Authorities() []string
	HasAuthority(authority string) bool
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. It embeds a
// denormalized snapshot of the user at issuance time; the snapshot is not a
// live reference and deliberately goes stale if the user row later changes.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID                string     `json:"uid,omitempty"`
	UserName           string     `json:"name,omitempty"`
	UserRole           UserRole   `json:"role,omitempty"`
	UserCreatedAt      *time.Time `json:"user_created_at,omitempty"`
	UserUpdatedAt      *time.Time `json:"user_updated_at,omitempty"`
	GrantedAuthorities []string   `json:"authorities,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Name returns the snapshot user name
func (c *JWTClaims) Name() string {
	return c.UserName
}

// Role returns the snapshot role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Authorities returns the authorities embedded at issuance time.
func (c *JWTClaims) Authorities() []string {
	return c.GrantedAuthorities
}

// HasAuthority checks the embedded authority list. The list reflects the
// role table as of issuance; the live table is not consulted.
func (c *JWTClaims) HasAuthority(authority string) bool {
	for _, granted := range c.GrantedAuthorities {
		if granted == authority {
			return true
		}
	}
	return false
}

// HasRole checks if the snapshot role matches
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
