package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/corvallis/go-auth"
)

func TestPasswordHasher(t *testing.T) {
	// MinCost keeps the hashing rounds cheap under test
	hasher := auth.NewPasswordHasher().WithCost(bcrypt.MinCost)

	t.Run("hash verifies against its own password", func(t *testing.T) {
		hash, err := hasher.HashPassword("securePassword123!")
		require.NoError(t, err)
		require.NotEmpty(t, hash)

		assert.NoError(t, hasher.ComparePasswordAndHash("securePassword123!", hash))
	})

	t.Run("blank password is rejected", func(t *testing.T) {
		_, err := hasher.HashPassword("")
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	})

	t.Run("wrong password reads as a credential mismatch", func(t *testing.T) {
		hash, err := hasher.HashPassword("correct_password")
		require.NoError(t, err)

		err = hasher.ComparePasswordAndHash("wrong_password", hash)
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("garbage hash errors without reading as a mismatch", func(t *testing.T) {
		err := hasher.ComparePasswordAndHash("anything", "not-a-bcrypt-hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("out of range cost falls back to the default", func(t *testing.T) {
		loose := auth.NewPasswordHasher().WithCost(bcrypt.MaxCost + 1)

		hash, err := loose.HashPassword("securePassword123!")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultPasswordCost, cost)
	})

	t.Run("verification is cost independent", func(t *testing.T) {
		hash, err := hasher.HashPassword("securePassword123!")
		require.NoError(t, err)

		other := auth.NewPasswordHasher()
		assert.NoError(t, other.ComparePasswordAndHash("securePassword123!", hash))
	})
}

func TestPackagePasswordHelpers(t *testing.T) {
	hash, err := auth.HashPassword("securePassword123!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultPasswordCost, cost)

	assert.NoError(t, auth.ComparePasswordAndHash("securePassword123!", hash))
	assert.ErrorIs(t, auth.ComparePasswordAndHash("nope", hash), auth.ErrMismatchedHashAndPassword)
}
