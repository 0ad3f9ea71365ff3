package services

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/platform/cache"
	"github.com/sagabat/transaction-manage/internal/platform/config"
)

// NewLRULegCaches builds in-process listing caches of at most size entries each.
func NewLRULegCaches(size int, ttl time.Duration) LegCaches {
	return LegCaches{
		Outgoing: cache.NewLRU[[]domain.LedgerLeg](CacheOutgoing, size, ttl),
		Incoming: cache.NewLRU[[]domain.LedgerLeg](CacheIncoming, size, ttl),
		All:      cache.NewLRU[[]domain.LedgerLeg](CacheAll, size, ttl),
		Paged:    cache.NewLRU[[]domain.LedgerLeg](CachePaged, size, ttl),
	}
}

// NewRedisLegCaches builds listing caches shared through Redis.
func NewRedisLegCaches(client *redis.Client, ttl time.Duration) LegCaches {
	return LegCaches{
		Outgoing: cache.NewRedis[[]domain.LedgerLeg](client, CacheOutgoing, ttl),
		Incoming: cache.NewRedis[[]domain.LedgerLeg](client, CacheIncoming, ttl),
		All:      cache.NewRedis[[]domain.LedgerLeg](client, CacheAll, ttl),
		Paged:    cache.NewRedis[[]domain.LedgerLeg](client, CachePaged, ttl),
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, caches LegCaches) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(repos.TokenStore, WithTokenTTL(cfg.TokenTTL))
	container.Audit = NewAuditService(repos.AuditRepo)
	container.Query = NewQueryService(repos.LedgerRepo, caches)

	// Writers invalidate the query layer after every commit.
	container.Transaction = NewTransactionService(
		repos.UnitOfWork,
		container.Token,
		container.Audit,
		container.Query,
	)

	container.Account = NewAccountService(repos.AccountRepo, repos.CustomerRepo)
	container.Customer = NewCustomerService(repos.CustomerRepo)

	return container
}
