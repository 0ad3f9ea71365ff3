package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/platform/metrics"
	"github.com/sagabat/transaction-manage/internal/utils/keylock"
)

// DefaultTokenTTL is the validity window of an idempotency token.
const DefaultTokenTTL = 5 * time.Minute

type tokenService struct {
	BaseService
	store portsrepo.TokenStore
	ttl   time.Duration
	locks *keylock.KeyedMutex
	now   func() time.Time
}

// TokenOption configures the token service.
type TokenOption func(*tokenService)

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(s *tokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTokenClock overrides the time source.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService creates the idempotency token guard.
func NewTokenService(store portsrepo.TokenStore, opts ...TokenOption) portssvc.TokenSvc {
	svc := &tokenService{
		store: store,
		ttl:   DefaultTokenTTL,
		locks: keylock.New(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.TokenSvc = (*tokenService)(nil)

func (s *tokenService) TTL() time.Duration { return s.ttl }

func (s *tokenService) Issue(ctx context.Context) (string, time.Time, error) {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)
	if err := s.store.Put(ctx, token, expiresAt); err != nil {
		s.LogError(ctx, err, "Failed to store idempotency token")
		return "", time.Time{}, apperrors.NewAppError(500, "failed to issue token", err)
	}
	s.LogDebug(ctx, "Idempotency token issued", slog.Time("expires_at", expiresAt))
	return token, expiresAt, nil
}

func (s *tokenService) Consume(ctx context.Context, token string) error {
	result := "ok"
	defer func() {
		metrics.TokenConsumptionsTotal.WithLabelValues(result).Inc()
	}()

	if token == "" {
		result = "invalid"
		return fmt.Errorf("%w: token is required", apperrors.ErrInvalidToken)
	}

	unlock := s.locks.Lock(token)
	defer unlock()

	expiresAt, found, err := s.store.Take(ctx, token)
	if err != nil {
		result = "error"
		s.LogError(ctx, err, "Failed to consume idempotency token")
		return apperrors.NewAppError(500, "failed to consume token", err)
	}
	if !found {
		result = "invalid"
		return apperrors.ErrInvalidToken
	}
	if !s.now().Before(expiresAt) {
		result = "expired"
		s.LogInfo(ctx, "Expired idempotency token presented", slog.Time("expired_at", expiresAt))
		return apperrors.ErrTokenExpired
	}
	return nil
}
