package repositories

import (
	"context"
	"time"
)

// TokenStore persists idempotency tokens and their expiry.
type TokenStore interface {
	// Put stores token with its expiry instant.
	Put(ctx context.Context, token string, expiresAt time.Time) error

	// Take atomically removes token and returns its expiry. found is false when
	// the token was never stored, already taken, or evicted.
	Take(ctx context.Context, token string) (expiresAt time.Time, found bool, err error)
}
