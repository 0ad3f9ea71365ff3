package pgsql

import (
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres-backed repository. Tokens live
// outside the database, so the caller supplies the token store.
func NewRepositoryProvider(dbPool *pgxpool.Pool, tokens portsrepo.TokenStore) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  newPgxAccountRepository(dbPool),
		CustomerRepo: newPgxCustomerRepository(dbPool),
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		AuditRepo:    newPgxAuditRepository(dbPool),
		UnitOfWork:   newPgxUnitOfWork(dbPool),
		TokenStore:   tokens,
	}
}
