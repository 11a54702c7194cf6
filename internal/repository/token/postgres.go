package token

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	pool   db.Querier
	logger *log.Logger
}

// NewPostgres stores sessions in the tokens table.
func NewPostgres(pool db.Querier, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Create skips the insert on a token collision instead of failing the
// statement, so the caller can draw a new token.
func (r *postgresRepo) Create(ctx context.Context, t Token) error {
	cmd, err := r.pool.Exec(ctx, `
INSERT INTO tokens (token, user_id, kind, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (token) DO NOTHING
`, t.Token, t.UserID, t.Kind, t.ExpiresAt)
	if err != nil {
		r.logger.Printf("token repo: create user_id=%d error=%v", t.UserID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, token string) (*Token, error) {
	var t Token
	err := r.pool.QueryRow(ctx, `
SELECT token, user_id, kind, expires_at, created_at FROM tokens WHERE token = $1
`, token).Scan(&t.Token, &t.UserID, &t.Kind, &t.ExpiresAt, &t.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, domain.ErrNotFound
	case err != nil:
		r.logger.Printf("token repo: get error=%v", err)
		return nil, err
	}
	return &t, nil
}

// Delete is logout. A token that is already gone is ErrNotFound.
func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) PurgeExpired(ctx context.Context, userID int64, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE user_id = $1 AND expires_at <= $2`, userID, now)
	if err != nil {
		return 0, err
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Printf("token repo: purged expired sessions user_id=%d count=%d", userID, n)
	}
	return cmd.RowsAffected(), nil
}
