package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PrincipalSnapshot is the denormalized identity copy embedded in an access
// token at issuance. It is rebuilt purely from verified claims, never from a
// store lookup, so it may be stale relative to the backing user row until the
// token is renewed.
type PrincipalSnapshot struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Role        UserRole   `json:"role,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Authorities []string   `json:"authorities,omitempty"`
}

// GetUserUUID parses the snapshot id as a UUID.
func (p *PrincipalSnapshot) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(p.ID)
}

// HasAuthority checks the authorities captured at issuance time.
func (p *PrincipalSnapshot) HasAuthority(authority string) bool {
	for _, granted := range p.Authorities {
		if granted == authority {
			return true
		}
	}
	return false
}

func (p PrincipalSnapshot) String() string {
	return fmt.Sprintf("user=%s name=%s role=%s", p.ID, p.Name, p.Role)
}

// PrincipalFromToken validates the token and rebuilds the principal snapshot
// from its claims.
func PrincipalFromToken(validator TokenValidator, tokenString string) (*PrincipalSnapshot, error) {
	claims, err := validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	return PrincipalFromClaims(claims)
}

// PrincipalFromClaims rebuilds the principal snapshot from already verified
// claims.
func PrincipalFromClaims(claims AuthClaims) (*PrincipalSnapshot, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	snapshot := &PrincipalSnapshot{
		ID:          claims.UserID(),
		Name:        claims.Name(),
		Role:        claims.Role(),
		Authorities: claims.Authorities(),
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		snapshot.CreatedAt = jwtClaims.UserCreatedAt
		snapshot.UpdatedAt = jwtClaims.UserUpdatedAt
	}

	return snapshot, nil
}
