package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenExpired marks tokens past their embedded expiry.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens that cannot be parsed at all.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeTokenUnsupported marks tokens signed with an unexpected method.
	TextCodeTokenUnsupported = "TOKEN_UNSUPPORTED"
	// TextCodeTokenSignatureInvalid marks tokens whose MAC does not verify.
	TextCodeTokenSignatureInvalid = "TOKEN_SIGNATURE_INVALID"

	textCodeRefreshTokenNotFound = "REFRESH_TOKEN_NOT_FOUND"
	textCodeRefreshTokenUnusable = "REFRESH_TOKEN_UNUSABLE"
	textCodeUserNotFound         = "USER_NOT_FOUND"
)

// ErrTokenExpired is returned when a token's embedded expiry has elapsed.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be parsed.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenUnsupported is returned for tokens using an unexpected signing method.
var ErrTokenUnsupported = goerrors.New("token signing method is unsupported", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenUnsupported).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenSignatureInvalid is returned when the token MAC does not verify.
var ErrTokenSignatureInvalid = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenSignatureInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrRefreshTokenNotFound is returned when no session row matches the
// presented refresh token.
var ErrRefreshTokenNotFound = goerrors.New("refresh token not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeRefreshTokenNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrRefreshTokenUnusable is returned when the matching session row is
// revoked or past its expiry.
var ErrRefreshTokenUnusable = goerrors.New("refresh token is revoked or expired", goerrors.CategoryAuth).
	WithTextCode(textCodeRefreshTokenUnusable).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is returned when a session operation references an owner
// unknown to the system.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is returned when credential verification fails.
var ErrMismatchedHashAndPassword = goerrors.New("credentials do not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned while the login cool-down window is active.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithCode(goerrors.CodeTooManyRequests)

// ErrNoEmptyString rejects blank required inputs.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
