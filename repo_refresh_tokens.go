package auth

import (
	"context"
	"database/sql"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens is the persistence contract for session rows. Pure storage;
// usability and revocation semantics live in SessionManager.
type RefreshTokens interface {
	Create(ctx context.Context, ownerID uuid.UUID, token string, expiresAt time.Time) (*RefreshToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID, token string, expiresAt time.Time) (*RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error)
	FindAllValid(ctx context.Context, ownerID uuid.UUID) ([]*RefreshToken, error)
	FindAllValidTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID) ([]*RefreshToken, error)
	MarkRevoked(ctx context.Context, row *RefreshToken) error
	MarkRevokedTx(ctx context.Context, tx bun.IDB, row *RefreshToken) error
	DeleteIfExpired(ctx context.Context, row *RefreshToken) (bool, error)
	DeleteExpired(ctx context.Context) (int, error)
}

type refreshTokens struct {
	repository.Repository[*RefreshToken]
	db *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	repo := repository.NewRepository[*RefreshToken](db, repository.ModelHandlers[*RefreshToken]{
		NewRecord: func() *RefreshToken { return &RefreshToken{} },
		GetID: func(t *RefreshToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *RefreshToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &refreshTokens{
		Repository: repo,
		db:         db,
	}
}

func (r *refreshTokens) Create(ctx context.Context, ownerID uuid.UUID, token string, expiresAt time.Time) (*RefreshToken, error) {
	return r.CreateTx(ctx, r.db, ownerID, token, expiresAt)
}

func (r *refreshTokens) CreateTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID, token string, expiresAt time.Time) (*RefreshToken, error) {
	row := &RefreshToken{
		ID:        uuid.New(),
		Token:     token,
		UserID:    ownerID,
		ExpiresAt: expiresAt,
	}

	return r.Repository.CreateTx(ctx, tx, row)
}

func (r *refreshTokens) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	return r.FindByTokenTx(ctx, r.db, token)
}

func (r *refreshTokens) FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error) {
	row := &RefreshToken{}
	err := tx.NewSelect().
		Model(row).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"token": token})
		}
		return nil, err
	}

	return row, nil
}

func (r *refreshTokens) FindAllValid(ctx context.Context, ownerID uuid.UUID) ([]*RefreshToken, error) {
	return r.FindAllValidTx(ctx, r.db, ownerID)
}

// FindAllValidTx returns the owner's rows that are neither revoked nor past
// expiry at call time.
func (r *refreshTokens) FindAllValidTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID) ([]*RefreshToken, error) {
	var rows []*RefreshToken
	err := tx.NewSelect().
		Model(&rows).
		Where("?TableAlias.user_id = ?", ownerID).
		Where("?TableAlias.revoked = ?", false).
		Where("?TableAlias.expires_at > ?", time.Now()).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *refreshTokens) MarkRevoked(ctx context.Context, row *RefreshToken) error {
	return r.MarkRevokedTx(ctx, r.db, row)
}

// MarkRevokedTx flips revoked to true. The transition is one-way; rows are
// never un-revoked.
func (r *refreshTokens) MarkRevokedTx(ctx context.Context, tx bun.IDB, row *RefreshToken) error {
	row.Revoked = true

	_, err := tx.NewUpdate().
		Model(row).
		Column("revoked").
		WherePK().
		Exec(ctx)

	return err
}

// DeleteIfExpired removes the row when its expiry has elapsed, reporting
// whether a deletion happened.
func (r *refreshTokens) DeleteIfExpired(ctx context.Context, row *RefreshToken) (bool, error) {
	if row == nil || time.Now().Before(row.ExpiresAt) {
		return false, nil
	}

	_, err := r.db.NewDelete().
		Model(row).
		WherePK().
		Exec(ctx)

	if err != nil {
		return false, err
	}

	return true, nil
}

// DeleteExpired sweeps every row past expiry and returns how many were
// removed.
func (r *refreshTokens) DeleteExpired(ctx context.Context) (int, error) {
	res, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("?TableAlias.expires_at <= ?", time.Now()).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}
