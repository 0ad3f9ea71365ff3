// Package memory provides an in-process implementation of every repository
// port. It backs local runs (STORAGE_DRIVER=memory) and the service tests.
//
// Units of work buffer their writes and apply them under the store lock at
// commit, so readers never observe a half-applied transaction. Row locks are
// per-key mutexes held until the unit of work ends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portsrepo "github.com/sagabat/transaction-manage/internal/core/ports/repositories"
	"github.com/sagabat/transaction-manage/internal/utils/keylock"
	"github.com/shopspring/decimal"
)

type legKey struct {
	transactionID string
	direction     domain.LegDirection
}

func keyOf(leg domain.LedgerLeg) legKey {
	return legKey{transactionID: leg.TransactionID, direction: leg.Direction}
}

// Store is a thread-safe in-memory data store.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	customers map[string]domain.Customer
	legs      map[legKey]domain.LedgerLeg
	audits    []domain.AuditEntry
	nextLogID int64

	rowLocks *keylock.KeyedMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		customers: make(map[string]domain.Customer),
		legs:      make(map[legKey]domain.LedgerLeg),
		rowLocks:  keylock.New(),
	}
}

// NewRepositoryProvider exposes the store through every repository port.
func NewRepositoryProvider(s *Store, tokens portsrepo.TokenStore) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  s,
		CustomerRepo: s,
		LedgerRepo:   s,
		AuditRepo:    s,
		UnitOfWork:   s,
		TokenStore:   tokens,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.CustomerRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerReader             = (*Store)(nil)
	_ portsrepo.AuditRepository          = (*Store)(nil)
	_ portsrepo.UnitOfWork               = (*Store)(nil)
)

func cloneLeg(leg domain.LedgerLeg) domain.LedgerLeg {
	if leg.CounterpartyAccountID != nil {
		id := *leg.CounterpartyAccountID
		leg.CounterpartyAccountID = &id
	}
	return leg
}

// --- Accounts ---

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok || acc.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) ListAccountsByCustomer(_ context.Context, customerID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.CustomerID == customerID && !acc.IsDeleted {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[account.AccountID]
	if !ok || existing.IsDeleted {
		return apperrors.ErrNotFound
	}
	existing.CustomerID = account.CustomerID
	existing.AccountType = account.AccountType
	existing.CurrencyCode = account.CurrencyCode
	existing.LastUpdatedAt = account.LastUpdatedAt
	s.accounts[account.AccountID] = existing
	return nil
}

func (s *Store) DeactivateAccount(_ context.Context, accountID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok || acc.IsDeleted {
		return apperrors.ErrNotFound
	}
	acc.IsDeleted = true
	acc.LastUpdatedAt = now
	s.accounts[accountID] = acc
	return nil
}

// --- Customers ---

func (s *Store) findCustomer(match func(domain.Customer) bool) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if !c.IsDeleted && match(c) {
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindCustomerByID(_ context.Context, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	c, ok := s.customers[customerID]
	s.mu.RUnlock()
	if !ok || c.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (s *Store) FindCustomerByEmail(_ context.Context, email string) (*domain.Customer, error) {
	return s.findCustomer(func(c domain.Customer) bool { return c.Email == email })
}

func (s *Store) FindCustomerByPhone(_ context.Context, phoneNumber string) (*domain.Customer, error) {
	return s.findCustomer(func(c domain.Customer) bool { return c.PhoneNumber == phoneNumber })
}

func (s *Store) SaveCustomer(_ context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customers[customer.CustomerID]; exists {
		return fmt.Errorf("%w: customer %s", apperrors.ErrDuplicate, customer.CustomerID)
	}
	s.customers[customer.CustomerID] = customer
	return nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customers[customer.CustomerID]
	if !ok || existing.IsDeleted {
		return apperrors.ErrNotFound
	}
	customer.CreatedAt = existing.CreatedAt
	customer.IsDeleted = false
	s.customers[customer.CustomerID] = customer
	return nil
}

func (s *Store) DeactivateCustomer(_ context.Context, customerID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok || c.IsDeleted {
		return apperrors.ErrNotFound
	}
	c.IsDeleted = true
	c.LastUpdatedAt = now
	s.customers[customerID] = c
	return nil
}

// --- Ledger ---

func (s *Store) FindLegByID(_ context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	leg, ok := s.legs[legKey{transactionID, direction}]
	if !ok || leg.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	leg = cloneLeg(leg)
	return &leg, nil
}

func (s *Store) ListLegsByAccount(_ context.Context, accountID string, direction *domain.LegDirection) ([]domain.LedgerLeg, error) {
	s.mu.RLock()
	legs := make([]domain.LedgerLeg, 0)
	for _, leg := range s.legs {
		if leg.IsDeleted || leg.AccountID != accountID {
			continue
		}
		if direction != nil && leg.Direction != *direction {
			continue
		}
		legs = append(legs, cloneLeg(leg))
	}
	s.mu.RUnlock()

	sort.Slice(legs, func(i, j int) bool {
		if !legs[i].CreatedAt.Equal(legs[j].CreatedAt) {
			return legs[i].CreatedAt.After(legs[j].CreatedAt)
		}
		if legs[i].TransactionID != legs[j].TransactionID {
			return legs[i].TransactionID < legs[j].TransactionID
		}
		return legs[i].Direction > legs[j].Direction
	})
	return legs, nil
}

// --- Audit ---

func (s *Store) AppendAuditEntry(_ context.Context, entry domain.AuditEntry) (*domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLogID++
	entry.LogID = s.nextLogID
	s.audits = append(s.audits, entry)
	return &entry, nil
}

func (s *Store) ListAuditEntries(_ context.Context, transactionID string) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.AuditEntry, 0)
	for _, e := range s.audits {
		if e.TransactionID != nil && *e.TransactionID == transactionID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// AuditEntries returns a copy of every audit entry, oldest first.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditEntry(nil), s.audits...)
}

// --- Unit of work ---

// WithinTx runs fn against a buffered view of the store and applies its writes
// atomically when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	tx := &memTx{
		store:    s,
		balances: make(map[string]decimal.Decimal),
		legs:     make(map[legKey]domain.LedgerLeg),
		held:     make(map[string]struct{}),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit(time.Now().UTC())
	return nil
}

type memTx struct {
	store    *Store
	balances map[string]decimal.Decimal
	legs     map[legKey]domain.LedgerLeg
	order    []legKey
	held     map[string]struct{}
	releases []func()
}

func accountLockKey(id string) string { return "account:" + id }
func legLockKey(id string) string     { return "txn:" + id }

func (t *memTx) lock(keys ...string) {
	pending := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := t.held[k]; !ok {
			pending = append(pending, k)
			t.held[k] = struct{}{}
		}
	}
	if len(pending) > 0 {
		t.releases = append(t.releases, t.store.rowLocks.LockAll(pending...))
	}
}

func (t *memTx) release() {
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
	t.releases = nil
}

func (t *memTx) commit(now time.Time) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, balance := range t.balances {
		acc := s.accounts[id]
		acc.Balance = balance
		acc.LastUpdatedAt = now
		s.accounts[id] = acc
	}
	for _, k := range t.order {
		s.legs[k] = t.legs[k]
	}
}

func (t *memTx) LockAccounts(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	ids := keylock.SortedUnique(accountIDs)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountLockKey(id)
	}
	t.lock(keys...)

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	found := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		acc, ok := t.store.accounts[id]
		if !ok || acc.IsDeleted {
			continue
		}
		if pending, ok := t.balances[id]; ok {
			acc.Balance = pending
		}
		found[id] = acc
	}
	return found, nil
}

func (t *memTx) UpdateAccountBalance(_ context.Context, accountID string, balance decimal.Decimal) error {
	if _, ok := t.held[accountLockKey(accountID)]; !ok {
		return fmt.Errorf("%w: account %s updated without lock", apperrors.ErrInternal, accountID)
	}
	if balance.IsNegative() {
		return fmt.Errorf("%w: balance of account %s would become %s", apperrors.ErrInsufficientBalance, accountID, balance)
	}
	t.balances[accountID] = balance
	return nil
}

func (t *memTx) FindLegForUpdate(_ context.Context, transactionID string, direction domain.LegDirection) (*domain.LedgerLeg, error) {
	t.lock(legLockKey(transactionID))

	k := legKey{transactionID, direction}
	if leg, ok := t.legs[k]; ok {
		if leg.IsDeleted {
			return nil, apperrors.ErrNotFound
		}
		leg = cloneLeg(leg)
		return &leg, nil
	}

	t.store.mu.RLock()
	leg, ok := t.store.legs[k]
	t.store.mu.RUnlock()
	if !ok || leg.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	leg = cloneLeg(leg)
	return &leg, nil
}

func (t *memTx) stage(leg domain.LedgerLeg) {
	k := keyOf(leg)
	if _, staged := t.legs[k]; !staged {
		t.order = append(t.order, k)
	}
	t.legs[k] = cloneLeg(leg)
}

func (t *memTx) InsertLeg(_ context.Context, leg domain.LedgerLeg) error {
	k := keyOf(leg)
	t.store.mu.RLock()
	_, exists := t.store.legs[k]
	t.store.mu.RUnlock()
	if _, staged := t.legs[k]; exists || staged {
		return fmt.Errorf("%w: ledger leg %s/%s", apperrors.ErrDuplicate, leg.TransactionID, leg.Direction)
	}
	t.stage(leg)
	return nil
}

func (t *memTx) UpdateLeg(_ context.Context, leg domain.LedgerLeg) error {
	k := keyOf(leg)
	t.store.mu.RLock()
	_, exists := t.store.legs[k]
	t.store.mu.RUnlock()
	if _, staged := t.legs[k]; !exists && !staged {
		return apperrors.ErrNotFound
	}
	t.stage(leg)
	return nil
}

func (t *memTx) CustomerExists(ctx context.Context, customerID string) (bool, error) {
	if _, err := t.store.FindCustomerByID(ctx, customerID); err != nil {
		return false, nil
	}
	return true, nil
}
