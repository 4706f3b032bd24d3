package auth_test

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	auth "github.com/corvallis/go-auth"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		err      *goerrors.Error
		category goerrors.Category
		textCode string
	}{
		{"expired", auth.ErrTokenExpired, goerrors.CategoryAuth, auth.TextCodeTokenExpired},
		{"malformed", auth.ErrTokenMalformed, goerrors.CategoryAuth, auth.TextCodeTokenMalformed},
		{"unsupported", auth.ErrTokenUnsupported, goerrors.CategoryAuth, auth.TextCodeTokenUnsupported},
		{"bad signature", auth.ErrTokenSignatureInvalid, goerrors.CategoryAuth, auth.TextCodeTokenSignatureInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
		})
	}

	assert.Equal(t, goerrors.CategoryNotFound, auth.ErrRefreshTokenNotFound.Category)
	assert.Equal(t, goerrors.CategoryAuth, auth.ErrRefreshTokenUnusable.Category)
	assert.Equal(t, goerrors.CategoryRateLimit, auth.ErrTooManyLoginAttempts.Category)
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.True(t, auth.IsTokenExpiredError(auth.ErrTokenExpired))
	assert.True(t, auth.IsTokenExpiredError(fmt.Errorf("validate: %w", auth.ErrTokenExpired)))
	assert.True(t, auth.IsTokenExpiredError(errors.New("token is expired by 3s")))
	assert.False(t, auth.IsTokenExpiredError(auth.ErrTokenMalformed))
	assert.False(t, auth.IsTokenExpiredError(nil))
}

func TestIsMalformedError(t *testing.T) {
	assert.True(t, auth.IsMalformedError(auth.ErrTokenMalformed))
	assert.True(t, auth.IsMalformedError(fmt.Errorf("validate: %w", auth.ErrTokenMalformed)))
	assert.True(t, auth.IsMalformedError(errors.New("missing or malformed JWT")))
	assert.False(t, auth.IsMalformedError(auth.ErrTokenExpired))
	assert.False(t, auth.IsMalformedError(nil))
}
