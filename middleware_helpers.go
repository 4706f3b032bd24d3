package auth

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/corvallis/go-auth/middleware/authgate"
)

// ValidationListener aliases the authgate listener so consumers can use auth helpers directly.
type ValidationListener = authgate.ValidationListener

// GateVerifier adapts a TokenService to the gate's TokenVerifier interface.
func GateVerifier(ts TokenService) authgate.TokenVerifier {
	return gateVerifier{ts: ts}
}

type gateVerifier struct {
	ts TokenService
}

func (g gateVerifier) VerifySignature(tokenString string) bool {
	return g.ts.VerifySignature(tokenString)
}

func (g gateVerifier) IsExpired(tokenString string) bool {
	return g.ts.IsExpired(tokenString)
}

func (g gateVerifier) Validate(tokenString string) (authgate.AuthClaims, error) {
	claims, err := g.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	gateClaims, ok := claims.(authgate.AuthClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return gateClaims, nil
}

// ContextEnricherAdapter stores accepted claims and the rebuilt principal
// snapshot in the standard context for downstream consumers. The values are
// scoped to the current request; nothing ambient survives it.
func ContextEnricherAdapter(c context.Context, claims authgate.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}

	enriched := WithClaimsContext(c, authClaims)

	if principal, err := PrincipalFromClaims(authClaims); err == nil {
		enriched = WithPrincipalContext(enriched, principal)
	}

	return enriched
}

// GateMiddleware wires a TokenService and Config into the gate with the
// context enricher installed.
func GateMiddleware(ts TokenService, cfg Config, skip func(ctx router.Context) bool) authgate.Config {
	return authgate.Config{
		Verifier:        GateVerifier(ts),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		AuthScheme:      cfg.GetAuthScheme(),
		ContextEnricher: ContextEnricherAdapter,
		Skip:            skip,
	}
}
