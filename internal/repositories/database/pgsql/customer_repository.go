package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/sagabat/transaction-manage/internal/models"
	"github.com/sagabat/transaction-manage/internal/utils/mapping"
)

type PgxCustomerRepository struct {
	pool *pgxpool.Pool
}

func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{pool: pool}
}

var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

const customerColumns = `customer_id, name, email, phone_number, address, is_deleted, created_at, last_updated_at`

func (r *PgxCustomerRepository) findOne(ctx context.Context, column, value string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + column + ` = $1 AND is_deleted = FALSE;`

	var m models.Customer
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&m.CustomerID,
		&m.Name,
		&m.Email,
		&m.PhoneNumber,
		&m.Address,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer by %s: %w", column, err)
	}
	c := mapping.ToDomainCustomer(m)
	return &c, nil
}

func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return r.findOne(ctx, "customer_id", customerID)
}

func (r *PgxCustomerRepository) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findOne(ctx, "email", email)
}

func (r *PgxCustomerRepository) FindCustomerByPhone(ctx context.Context, phoneNumber string) (*domain.Customer, error) {
	return r.findOne(ctx, "phone_number", phoneNumber)
}

// SaveCustomer inserts a new customer.
func (r *PgxCustomerRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		m.CustomerID, m.Name, m.Email, m.PhoneNumber, m.Address, m.IsDeleted, m.CreatedAt, m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: customer %s already exists", apperrors.ErrDuplicate, m.CustomerID)
		}
		return fmt.Errorf("failed to save customer %s: %w", m.CustomerID, err)
	}
	return nil
}

// UpdateCustomer overwrites a customer's contact details.
func (r *PgxCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		UPDATE customers
		SET name = $2, email = $3, phone_number = $4, address = $5, last_updated_at = $6
		WHERE customer_id = $1 AND is_deleted = FALSE;
	`
	cmdTag, err := r.pool.Exec(ctx, query, m.CustomerID, m.Name, m.Email, m.PhoneNumber, m.Address, m.LastUpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email or phone number already registered", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to update customer %s: %w", m.CustomerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateCustomer soft-deletes a customer.
func (r *PgxCustomerRepository) DeactivateCustomer(ctx context.Context, customerID string, now time.Time) error {
	query := `UPDATE customers SET is_deleted = TRUE, last_updated_at = $2 WHERE customer_id = $1 AND is_deleted = FALSE;`
	cmdTag, err := r.pool.Exec(ctx, query, customerID, now)
	if err != nil {
		return fmt.Errorf("failed to deactivate customer %s: %w", customerID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
