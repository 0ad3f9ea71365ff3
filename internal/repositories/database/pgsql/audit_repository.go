package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/sagabat/transaction-manage/internal/models"
	"github.com/sagabat/transaction-manage/internal/utils/mapping"
)

// PgxAuditRepository writes to transaction_logs on the pool directly, never
// inside a caller's transaction, so entries survive rollbacks.
type PgxAuditRepository struct {
	pool *pgxpool.Pool
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{pool: pool}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) (*domain.AuditEntry, error) {
	m := mapping.ToModelAuditEntry(entry)
	query := `
		INSERT INTO transaction_logs (transaction_id, status, message, logged_at)
		VALUES ($1, $2, $3, $4)
		RETURNING log_id;
	`
	if err := r.pool.QueryRow(ctx, query, m.TransactionID, m.Status, m.Message, m.LoggedAt).Scan(&entry.LogID); err != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return &entry, nil
}

func (r *PgxAuditRepository) ListAuditEntries(ctx context.Context, transactionID string) ([]domain.AuditEntry, error) {
	query := `
		SELECT log_id, transaction_id, status, message, logged_at
		FROM transaction_logs
		WHERE transaction_id = $1
		ORDER BY log_id;
	`
	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries for %s: %w", transactionID, err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(&m.LogID, &m.TransactionID, &m.Status, &m.Message, &m.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainAuditEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries for %s: %w", transactionID, err)
	}
	return entries, nil
}
