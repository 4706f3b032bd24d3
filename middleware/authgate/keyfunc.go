package authgate

import (
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SigningKey holds information about a recognized verification key.
type SigningKey struct {
	// JWTAlg pins the accepted algorithm; empty accepts any key-compatible alg.
	JWTAlg string
	// Key is the cryptographic key (HMAC secret, RSA/EC public key).
	Key any
}

// KeyfuncVerifierConfig configures a verifier for externally issued tokens
// whose keys come from static key material, a JWK Set URL, or both.
type KeyfuncVerifierConfig struct {
	SigningKey  SigningKey
	SigningKeys map[string]SigningKey
	JWKSetURLs  []string
	KeyFunc     jwt.Keyfunc
	Issuer      string
	Audience    []string
}

// keyfuncVerifier implements TokenVerifier on top of a jwt.Keyfunc, so the
// gate can accept tokens this service did not mint (e.g. an upstream
// identity provider) with the same anonymous-degrade behavior.
type keyfuncVerifier struct {
	keyFunc jwt.Keyfunc
	options []jwt.ParserOption
}

// NewKeyfuncVerifier resolves the configured key sources into a verifier.
func NewKeyfuncVerifier(cfg KeyfuncVerifierConfig) (TokenVerifier, error) {
	kf := cfg.KeyFunc

	if kf == nil {
		switch {
		case len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0:
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}

			if len(cfg.JWKSetURLs) > 0 {
				multi, err := multiKeyfunc(givenKeys, cfg.JWKSetURLs)
				if err != nil {
					return nil, err
				}
				kf = multi
			} else {
				kf = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		case cfg.SigningKey.Key != nil:
			kf = signingKeyFunc(cfg.SigningKey)
		default:
			return nil, fmt.Errorf("keyfunc verifier requires KeyFunc, JWKSetURLs, SigningKeys, or SigningKey")
		}
	}

	options := make([]jwt.ParserOption, 0, 2)
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}
	if len(cfg.Audience) > 0 {
		options = append(options, jwt.WithAudience(cfg.Audience...))
	}

	return &keyfuncVerifier{keyFunc: kf, options: options}, nil
}

func (v *keyfuncVerifier) VerifySignature(tokenString string) bool {
	_, err := jwt.Parse(tokenString, v.keyFunc, v.options...)
	return err == nil
}

func (v *keyfuncVerifier) IsExpired(tokenString string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return true
	}

	expires, err := claims.GetExpirationTime()
	if err != nil || expires == nil {
		return true
	}

	return !time.Now().Before(expires.Time)
}

func (v *keyfuncVerifier) Validate(tokenString string) (AuthClaims, error) {
	token, err := jwt.Parse(tokenString, v.keyFunc, v.options...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("unable to map claims")
	}

	return externalClaims(claims), nil
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwkSetURLs []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK Set URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK Set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}

// externalClaims adapts MapClaims from an externally issued token to the
// gate's claim surface. Externally issued tokens carry no authority list;
// authorities derive from the role claim downstream.
type externalClaims jwt.MapClaims

func (c externalClaims) Subject() string {
	sub, _ := jwt.MapClaims(c).GetSubject()
	return sub
}

func (c externalClaims) UserID() string {
	if uid, ok := c["uid"].(string); ok && uid != "" {
		return uid
	}
	return c.Subject()
}

func (c externalClaims) Name() string {
	name, _ := c["name"].(string)
	return name
}

func (c externalClaims) Role() string {
	role, _ := c["role"].(string)
	return role
}

func (c externalClaims) Authorities() []string {
	raw, ok := c["authorities"].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c externalClaims) HasAuthority(authority string) bool {
	for _, granted := range c.Authorities() {
		if granted == authority {
			return true
		}
	}
	return false
}

func (c externalClaims) HasRole(role string) bool {
	return c.Role() == role
}
