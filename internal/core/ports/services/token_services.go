package services

import (
	"context"
	"time"
)

// TokenSvc issues and consumes single-use idempotency tokens.
type TokenSvc interface {
	// Issue creates a token valid for TTL() and returns the instant it expires.
	Issue(ctx context.Context) (token string, expiresAt time.Time, err error)

	// Consume removes the token, succeeding at most once per issued value.
	// Fails with apperrors.ErrInvalidToken or apperrors.ErrTokenExpired.
	Consume(ctx context.Context, token string) error

	// TTL is the validity window of newly issued tokens.
	TTL() time.Duration
}
