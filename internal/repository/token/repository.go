// Package token persists the opaque bearer tokens shoppers receive at login.
package token

import (
	"context"
	"time"
)

const KindAccess = "access"

// Token is one login session. The token string itself is the primary key.
type Token struct {
	Token     string
	UserID    int64
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	// Create returns ErrAlreadyExists when the token string is taken.
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired drops a user's sessions that expired at or before now.
	PurgeExpired(ctx context.Context, userID int64, now time.Time) (int64, error)
}
