package auth

import (
	"context"
)

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithPrincipalContext sets the PrincipalSnapshot in the given context. The
// value lives for the current request only; it is never persisted or reused
// across requests.
func WithPrincipalContext(ctx context.Context, principal *PrincipalSnapshot) context.Context {
	return context.WithValue(ctx, principalCtxKey, principal)
}

// PrincipalFromContext finds the principal from the context.
func PrincipalFromContext(ctx context.Context) (*PrincipalSnapshot, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*PrincipalSnapshot)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// IsAuthenticated reports whether the request carries an authenticated
// principal. Requests that failed (or skipped) the gate read as anonymous.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := GetClaims(ctx)
	return ok
}

// Can is a convenience function to check a permission directly from the
// context. Anonymous requests can do nothing.
func Can(ctx context.Context, permission Permission) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.HasAuthority(permission)
}

// HasRole checks the coarse role authority from the context.
func HasRole(ctx context.Context, role UserRole) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.HasRole(role)
}
