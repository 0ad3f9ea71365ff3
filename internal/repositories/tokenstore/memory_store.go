// Package tokenstore holds the backends of the idempotency token store.
package tokenstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
)

// MemoryStore keeps tokens in a map. A janitor goroutine evicts tokens that
// expired more than grace ago; expired tokens inside the grace window are kept
// so they can still be reported as expired rather than unknown.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	grace  time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	started  bool
	done     chan struct{}
}

var _ portsrepo.TokenStore = (*MemoryStore)(nil)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for eviction.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store that evicts tokens grace after they expire.
func NewMemoryStore(grace time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		tokens: make(map[string]time.Time),
		grace:  grace,
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	s.tokens[token] = expiresAt
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.tokens[token]
	if ok {
		delete(s.tokens, token)
	}
	return expiresAt, ok, nil
}

// Len returns the number of tokens currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// EvictExpired removes tokens whose expiry lies more than grace in the past
// and returns how many were removed.
func (s *MemoryStore) EvictExpired() int {
	cutoff := s.now().Add(-s.grace)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for token, expiresAt := range s.tokens {
		if expiresAt.Before(cutoff) {
			delete(s.tokens, token)
			evicted++
		}
	}
	return evicted
}

// StartJanitor runs EvictExpired every interval until ctx is done or Close is called.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if n := s.EvictExpired(); n > 0 {
					slog.Debug("Evicted expired idempotency tokens", slog.Int("count", n))
				}
			}
		}
	}()
}

// Close stops the janitor and waits for it to exit. It is safe to call when
// the janitor was never started.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
}
