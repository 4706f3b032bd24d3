package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/corvallis/go-auth"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    user_role TEXT NOT NULL,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    login_attempts INTEGER DEFAULT 0,
    login_attempt_at TIMESTAMP NULL,
    loggedin_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`
	sqliteCreateRefreshTokens = `CREATE TABLE refresh_tokens (
    id TEXT NOT NULL PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    revoked BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`
)

func setupRefreshTokensRepo(t *testing.T) (auth.RefreshTokens, uuid.UUID, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)
	_, err = bunDB.Exec(sqliteCreateRefreshTokens)
	require.NoError(t, err)

	ownerID := uuid.New()
	_, err = bunDB.Exec(
		"INSERT INTO users (id, user_role, username, email) VALUES (?, ?, ?, ?)",
		ownerID.String(), auth.RoleUser, "alice", "alice@example.com",
	)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return auth.NewRefreshTokensRepository(bunDB), ownerID, cleanup
}

func TestRefreshTokensCreateAndFind(t *testing.T) {
	repo, ownerID, cleanup := setupRefreshTokensRepo(t)
	defer cleanup()

	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour).UTC()

	created, err := repo.Create(ctx, ownerID, "opaque-token-1", expiresAt)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByToken(ctx, "opaque-token-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, ownerID, found.UserID)
	assert.False(t, found.Revoked)
}

func TestRefreshTokensFindByTokenMissing(t *testing.T) {
	repo, _, cleanup := setupRefreshTokensRepo(t)
	defer cleanup()

	_, err := repo.FindByToken(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestRefreshTokensFindAllValid(t *testing.T) {
	repo, ownerID, cleanup := setupRefreshTokensRepo(t)
	defer cleanup()

	ctx := context.Background()
	future := time.Now().Add(time.Hour).UTC()
	past := time.Now().Add(-time.Hour).UTC()

	live, err := repo.Create(ctx, ownerID, "live-token", future)
	require.NoError(t, err)
	_, err = repo.Create(ctx, ownerID, "expired-token", past)
	require.NoError(t, err)
	revokedRow, err := repo.Create(ctx, ownerID, "revoked-token", future)
	require.NoError(t, err)
	require.NoError(t, repo.MarkRevoked(ctx, revokedRow))

	rows, err := repo.FindAllValid(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, live.ID, rows[0].ID)

	others, err := repo.FindAllValid(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestRefreshTokensMarkRevoked(t *testing.T) {
	repo, ownerID, cleanup := setupRefreshTokensRepo(t)
	defer cleanup()

	ctx := context.Background()

	row, err := repo.Create(ctx, ownerID, "opaque-token-1", time.Now().Add(time.Hour).UTC())
	require.NoError(t, err)

	require.NoError(t, repo.MarkRevoked(ctx, row))

	found, err := repo.FindByToken(ctx, "opaque-token-1")
	require.NoError(t, err)
	assert.True(t, found.Revoked)

	// a second revocation is a no-op, never a flip back
	require.NoError(t, repo.MarkRevoked(ctx, found))
	found, err = repo.FindByToken(ctx, "opaque-token-1")
	require.NoError(t, err)
	assert.True(t, found.Revoked)
}

func TestRefreshTokensDeleteIfExpired(t *testing.T) {
	repo, ownerID, cleanup := setupRefreshTokensRepo(t)
	defer cleanup()

	ctx := context.Background()

	live, err := repo.Create(ctx, ownerID, "live-token", time.Now().Add(time.Hour).UTC())
	require.NoError(t, err)
	stale, err := repo.Create(ctx, ownerID, "stale-token", time.Now().Add(-time.Hour).UTC())
	require.NoError(t, err)

	deleted, err := repo.DeleteIfExpired(ctx, live)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteIfExpired(ctx, stale)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByToken(ctx, "stale-token")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestRefreshTokensDeleteExpired(t *testing.T) {
	repo, ownerID, cleanup := setupRefreshTokensRepo(t)
	defer cleanup()

	ctx := context.Background()
	future := time.Now().Add(time.Hour).UTC()
	past := time.Now().Add(-time.Hour).UTC()

	_, err := repo.Create(ctx, ownerID, "live-token", future)
	require.NoError(t, err)
	_, err = repo.Create(ctx, ownerID, "stale-token-1", past)
	require.NoError(t, err)
	_, err = repo.Create(ctx, ownerID, "stale-token-2", past)
	require.NoError(t, err)

	swept, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, swept)

	_, err = repo.FindByToken(ctx, "live-token")
	assert.NoError(t, err)

	swept, err = repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}
