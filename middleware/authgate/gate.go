// Package authgate is the per-request authentication decision point. It
// converts a raw bearer token into an anonymous or authenticated request
// context and nothing else: it performs no token refresh and raises no
// error on an invalid or expired token. Rejecting anonymous requests is
// the job of downstream authorization checks, which is why every failure
// path here degrades silently instead of short-circuiting with a 401.
package authgate

import (
	"context"
	"strings"

	"github.com/goliatone/go-router"
)

var defaultTokenLookup = "header:" + router.HeaderAuthorization

// TokenVerifier decides token validity without tying the gate to a signing
// implementation. It mirrors the TokenService surface from the auth package
// to avoid import cycles.
type TokenVerifier interface {
	VerifySignature(tokenString string) bool
	IsExpired(tokenString string) bool
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the claim surface the gate attaches to a request. It
// mirrors the AuthClaims interface from the auth package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Name() string
	Role() string
	Authorities() []string
	HasAuthority(authority string) bool
	HasRole(role string) bool
}

// ValidationListener is invoked after a token has been accepted but before
// the request proceeds.
type ValidationListener func(ctx router.Context, claims AuthClaims) error

type Config struct {
	// Skip marks unauthenticated-by-design routes (login, signup); matching
	// requests pass through unchanged.
	Skip           func(router.Context) bool
	SuccessHandler router.HandlerFunc

	// Verifier is required for token validation
	Verifier TokenVerifier

	ContextKey  string
	TokenLookup string
	AuthScheme  string

	// ContextEnricher propagates accepted claims to the standard Go context
	// so downstream consumers read them from an explicit value rather than
	// any ambient per-request state.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context

	// ValidationListeners are invoked after a token is accepted. Use them to
	// emit events or perform bookkeeping before the request proceeds.
	ValidationListeners []ValidationListener

	// Logger receives one line per rejected token; rejection causes are
	// already logged at the codec.
	Logger func(format string, args ...any)
}

// New builds the gate middleware. Evaluation order per request: skip-listed
// route, then bearer extraction, then signature and expiry checks. Any miss
// leaves the request anonymous and forwards it unchanged.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				// no Authorization header or wrong scheme: anonymous
				return ctx.Next()
			}

			if !cfg.Verifier.VerifySignature(raw) || cfg.Verifier.IsExpired(raw) {
				cfg.Logger("authgate: token rejected, continuing anonymous")
				return ctx.Next()
			}

			claims, err := cfg.Verifier.Validate(raw)
			if err != nil {
				cfg.Logger("authgate: claims rejected, continuing anonymous: %v", err)
				return ctx.Next()
			}

			if err := cfg.runValidationListeners(ctx, claims); err != nil {
				cfg.Logger("authgate: validation listener rejected request: %v", err)
				return ctx.Next()
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				stdCtx := ctx.Context()
				ctx.SetContext(cfg.ContextEnricher(stdCtx, claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.Verifier == nil {
		panic("AUTH: gate middleware configuration: Verifier is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Logger == nil {
		cfg.Logger = func(format string, args ...any) {}
	}

	return cfg
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, claims AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, claims); err != nil {
			return err
		}
	}
	return nil
}

// RequirePath builds a Skip predicate from literal path prefixes.
func RequirePath(publicPrefixes ...string) func(router.Context) bool {
	return func(ctx router.Context) bool {
		path := ctx.Path()
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}
