package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/platform/cache"
	"github.com/sagabat/transaction-manage/internal/platform/metrics"
)

// Cache names, also used as metric labels and Redis key namespaces.
const (
	CacheOutgoing = "outgoingTransactions"
	CacheIncoming = "incomingTransactions"
	CacheAll      = "allTransactions"
	CachePaged    = "pagedTransactions"
)

// MaxPageSize bounds ListTransactions.
const MaxPageSize = 100

// LegCaches groups the listing caches of the query layer.
type LegCaches struct {
	Outgoing cache.Store[[]domain.LedgerLeg]
	Incoming cache.Store[[]domain.LedgerLeg]
	All      cache.Store[[]domain.LedgerLeg]
	Paged    cache.Store[[]domain.LedgerLeg]
}

func (c LegCaches) each(fn func(cache.Store[[]domain.LedgerLeg])) {
	for _, s := range []cache.Store[[]domain.LedgerLeg]{c.Outgoing, c.Incoming, c.All, c.Paged} {
		fn(s)
	}
}

type queryService struct {
	BaseService
	ledger portsrepo.LedgerReader
	caches LegCaches
}

// NewQueryService creates the cached read side over the ledger.
func NewQueryService(ledger portsrepo.LedgerReader, caches LegCaches) portssvc.QuerySvc {
	return &queryService{ledger: ledger, caches: caches}
}

var _ portssvc.QuerySvc = (*queryService)(nil)

func directionPtr(d domain.LegDirection) *domain.LegDirection {
	return &d
}

// cached serves key from c, loading and storing it on a miss. The generation
// is captured before the load so a result that races an invalidation is dropped.
func (s *queryService) cached(
	ctx context.Context,
	c cache.Store[[]domain.LedgerLeg],
	key string,
	load func(ctx context.Context) ([]domain.LedgerLeg, error),
) ([]domain.LedgerLeg, error) {
	if legs, ok := c.Get(ctx, key); ok {
		metrics.CacheLookupsTotal.WithLabelValues(c.Name(), "hit").Inc()
		return append([]domain.LedgerLeg(nil), legs...), nil
	}
	metrics.CacheLookupsTotal.WithLabelValues(c.Name(), "miss").Inc()

	generation := c.Generation(ctx)
	legs, err := load(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger legs", slog.String("cache", c.Name()), slog.String("key", key))
		return nil, err
	}
	c.Set(ctx, generation, key, legs)
	return append([]domain.LedgerLeg(nil), legs...), nil
}

func (s *queryService) byDirection(ctx context.Context, c cache.Store[[]domain.LedgerLeg], accountID string, direction *domain.LegDirection) ([]domain.LedgerLeg, error) {
	return s.cached(ctx, c, accountID, func(ctx context.Context) ([]domain.LedgerLeg, error) {
		return s.ledger.ListLegsByAccount(ctx, accountID, direction)
	})
}

func (s *queryService) ListOutgoing(ctx context.Context, accountID string) ([]domain.LedgerLeg, error) {
	return s.byDirection(ctx, s.caches.Outgoing, accountID, directionPtr(domain.Outgoing))
}

func (s *queryService) ListIncoming(ctx context.Context, accountID string) ([]domain.LedgerLeg, error) {
	return s.byDirection(ctx, s.caches.Incoming, accountID, directionPtr(domain.Incoming))
}

func (s *queryService) ListAll(ctx context.Context, accountID string) ([]domain.LedgerLeg, error) {
	return s.byDirection(ctx, s.caches.All, accountID, nil)
}

// ListTransactions pages through ListAll, most recent first. page is zero-based.
func (s *queryService) ListTransactions(ctx context.Context, accountID string, page, size int) ([]domain.LedgerLeg, error) {
	if page < 0 || size < 1 || size > MaxPageSize {
		return nil, fmt.Errorf("%w: page must be >= 0 and size within 1..%d", apperrors.ErrValidation, MaxPageSize)
	}
	key := fmt.Sprintf("%s:%d:%d", accountID, page, size)
	return s.cached(ctx, s.caches.Paged, key, func(ctx context.Context) ([]domain.LedgerLeg, error) {
		all, err := s.ledger.ListLegsByAccount(ctx, accountID, nil)
		if err != nil {
			return nil, err
		}
		start := page * size
		if start >= len(all) {
			return []domain.LedgerLeg{}, nil
		}
		end := min(start+size, len(all))
		return all[start:end], nil
	})
}

func (s *queryService) InvalidateAll(ctx context.Context) {
	s.caches.each(func(c cache.Store[[]domain.LedgerLeg]) {
		c.InvalidateAll(ctx)
	})
	metrics.CacheInvalidationsTotal.Inc()
	s.LogDebug(ctx, "Listing caches invalidated")
}
