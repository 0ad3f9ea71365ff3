package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
)

const tokenKeyPrefix = "txn:token:"

// RedisStore keeps each token under its own key holding the expiry as unix
// nanoseconds. Keys outlive the token by grace so late callers still get an
// expiry error; Redis drops them afterwards.
type RedisStore struct {
	client *redis.Client
	grace  time.Duration
	now    func() time.Time
}

var _ portsrepo.TokenStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client *redis.Client, grace time.Duration) *RedisStore {
	return &RedisStore{client: client, grace: grace, now: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now()) + s.grace
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	value := strconv.FormatInt(expiresAt.UnixNano(), 10)
	if err := s.client.Set(ctx, tokenKeyPrefix+token, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Take uses GETDEL so concurrent callers across processes see the token at most once.
func (s *RedisStore) Take(ctx context.Context, token string) (time.Time, bool, error) {
	value, err := s.client.GetDel(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to take token: %w", err)
	}
	nanos, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt token expiry %q: %w", value, err)
	}
	return time.Unix(0, nanos), true, nil
}
