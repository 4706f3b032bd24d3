package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance. The signing key is an
// explicit dependency; there is no process-wide key singleton.
func NewTokenService(signingKey []byte, issuer string, audience jwt.ClaimStrings, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// NewTokenServiceFromConfig builds a TokenService from an auth Config.
func NewTokenServiceFromConfig(cfg Config, logger Logger) TokenService {
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(), jwt.ClaimStrings(cfg.GetAudience()), logger)
}

// Generate creates a signed access token embedding the identity snapshot and
// its role-derived authorities. The token is stateless; validity is decided
// solely by signature plus embedded expiry at verification time.
func (ts *TokenServiceImpl) Generate(identity Identity, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audienceCopy(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:                identity.ID(),
		UserName:           identity.Username(),
		UserRole:           identity.Role(),
		GrantedAuthorities: Authorities(identity.Role()),
	}

	if stamped, ok := identity.(TimestampedIdentity); ok {
		claims.UserCreatedAt = stamped.CreatedAt()
		claims.UserUpdatedAt = stamped.UpdatedAt()
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// The failure taxonomy (expired, malformed, unsupported, bad signature) is
// observable here; the gate collapses it to a boolean.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	token, err := ts.parse(tokenString)
	if err != nil {
		switch {
		case goerrors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case goerrors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		case goerrors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, goerrors.Wrap(err, ErrTokenUnsupported.Category, ErrTokenUnsupported.Message).
				WithTextCode(ErrTokenUnsupported.TextCode)
		default:
			return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

// VerifySignature attempts a full parse and signature check. Every failure
// mode logs its distinct cause and yields false; it never returns an error.
func (ts *TokenServiceImpl) VerifySignature(tokenString string) bool {
	if strings.TrimSpace(tokenString) == "" {
		ts.logger.Debug("token rejected: blank token string")
		return false
	}

	_, err := ts.parse(tokenString)
	if err == nil {
		return true
	}

	switch {
	case goerrors.Is(err, jwt.ErrTokenExpired):
		ts.logger.Debug("token rejected: expired", "error", err)
	case goerrors.Is(err, jwt.ErrTokenSignatureInvalid):
		ts.logger.Debug("token rejected: signature invalid", "error", err)
	case goerrors.Is(err, jwt.ErrTokenMalformed):
		ts.logger.Debug("token rejected: malformed", "error", err)
	case goerrors.Is(err, jwt.ErrTokenUnverifiable):
		ts.logger.Debug("token rejected: unsupported signing method", "error", err)
	default:
		ts.logger.Debug("token rejected", "error", err)
	}

	return false
}

// IsExpired compares the token's embedded expiry to the current wall clock.
// It parses without verifying, so a token can be well formed and expired
// while its signature is still perfectly valid, and vice versa. Tokens whose
// expiry cannot be read are treated as expired.
func (ts *TokenServiceImpl) IsExpired(tokenString string) bool {
	claims, err := ts.ExtractClaims(tokenString)
	if err != nil {
		return true
	}

	expires := claims.Expires()
	if expires.IsZero() {
		return true
	}

	return !time.Now().Before(expires)
}

// ExtractClaims projects claims out of a structurally parseable token
// without checking the signature. Unparseable tokens fail with
// ErrTokenMalformed.
func (ts *TokenServiceImpl) ExtractClaims(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(tokenString, &JWTClaims{})
	if err != nil {
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// ExtractClaim projects a single value out of a parseable token using the
// provided selector.
func ExtractClaim[T any](ts TokenService, tokenString string, selector func(*JWTClaims) T) (T, error) {
	var zero T

	claims, err := ts.ExtractClaims(tokenString)
	if err != nil {
		return zero, err
	}

	return selector(claims), nil
}

func (ts *TokenServiceImpl) parse(tokenString string) (*jwt.Token, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	return jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)
}

func (ts *TokenServiceImpl) audienceCopy() jwt.ClaimStrings {
	if len(ts.audience) == 0 {
		return nil
	}

	aud := make(jwt.ClaimStrings, len(ts.audience))
	copy(aud, ts.audience)
	return aud
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
