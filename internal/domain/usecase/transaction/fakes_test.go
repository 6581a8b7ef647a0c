package transaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

// nopLogger discards everything
type nopLogger struct{}

func (nopLogger) SetLevel(core.LogLevel)       {}
func (nopLogger) GetLevel() core.LogLevel      { return core.LogLevelError }
func (nopLogger) Debug(string, map[string]any) {}
func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}
func (nopLogger) Flush() error                 { return nil }

// stubTimeProvider returns a fixed now and records sleeps
type stubTimeProvider struct {
	now    time.Time
	sleeps []core.Duration
}

func (p *stubTimeProvider) Now() time.Time                  { return p.now }
func (p *stubTimeProvider) Since(t time.Time) core.Duration { return core.Duration(p.now.Sub(t)) }
func (p *stubTimeProvider) Until(t time.Time) core.Duration { return core.Duration(t.Sub(p.now)) }
func (p *stubTimeProvider) Sleep(d core.Duration)           { p.sleeps = append(p.sleeps, d) }
func (p *stubTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
func (p *stubTimeProvider) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}

// memStore is the shared backing state of all fake repositories
type memStore struct {
	mu         sync.Mutex
	txns       map[uuid.UUID]*entity.Transaction
	accounts   map[uuid.UUID]*entity.Account
	categories map[uuid.UUID]*entity.Category
}

func newMemStore() *memStore {
	return &memStore{
		txns:       make(map[uuid.UUID]*entity.Transaction),
		accounts:   make(map[uuid.UUID]*entity.Account),
		categories: make(map[uuid.UUID]*entity.Category),
	}
}

func copyTxn(t *entity.Transaction) *entity.Transaction {
	c := *t
	if t.ToAccountID != nil {
		id := *t.ToAccountID
		c.ToAccountID = &id
	}
	if t.CategoryID != nil {
		id := *t.CategoryID
		c.CategoryID = &id
	}
	return &c
}

// fakeUnitOfWork hands out repositories over the shared store. Begin is a
// no-op; atomicity is not under test here.
type fakeUnitOfWork struct {
	store     *memStore
	commits   int
	rollbacks int
	beginErr  error
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if u.beginErr != nil {
		return nil, u.beginErr
	}
	return ctx, nil
}
func (u *fakeUnitOfWork) Commit(ctx context.Context) error   { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback(ctx context.Context) error { u.rollbacks++; return nil }
func (u *fakeUnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return &fakeTxnRepo{store: u.store}
}
func (u *fakeUnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return &fakeAccountRepo{store: u.store}
}
func (u *fakeUnitOfWork) GetCategoryRepository(ctx context.Context) persistence.CategoryRepository {
	return &fakeCategoryRepo{store: u.store}
}

type fakeTxnRepo struct {
	store *memStore
}

func (r *fakeTxnRepo) Create(ctx context.Context, txn *entity.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if txn.ClientTxnID != "" {
		for _, existing := range r.store.txns {
			if existing.UserID == txn.UserID && !existing.IsDeleted && existing.ClientTxnID == txn.ClientTxnID {
				return errs.ErrDuplicateTransaction
			}
		}
	}
	r.store.txns[txn.ID] = copyTxn(txn)
	return nil
}

func (r *fakeTxnRepo) GetByID(ctx context.Context, userID, txnID uuid.UUID) (*entity.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[txnID]
	if !ok || txn.UserID != userID || txn.IsDeleted {
		return nil, errs.ErrTransactionNotFound
	}
	return copyTxn(txn), nil
}

func (r *fakeTxnRepo) FindByClientTxnID(ctx context.Context, userID uuid.UUID, clientTxnID string) (*entity.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, txn := range r.store.txns {
		if txn.UserID == userID && !txn.IsDeleted && txn.ClientTxnID == clientTxnID {
			return copyTxn(txn), nil
		}
	}
	return nil, nil
}

func (r *fakeTxnRepo) FindOpeningBalance(ctx context.Context, userID, accountID uuid.UUID) (*entity.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, txn := range r.store.txns {
		if txn.UserID == userID && !txn.IsDeleted && txn.AccountID == accountID && txn.Type == entity.TxnTypeOpeningBalance {
			return copyTxn(txn), nil
		}
	}
	return nil, nil
}

func (r *fakeTxnRepo) UpdateCheckpoint(ctx context.Context, txnID uuid.UUID, direction entity.Direction, amountInCents int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[txnID]
	if !ok || txn.IsDeleted || txn.Type != entity.TxnTypeOpeningBalance {
		return errs.ErrTransactionNotFound
	}
	txn.Direction = direction
	txn.AmountInCents = amountInCents
	return nil
}

func (r *fakeTxnRepo) Update(ctx context.Context, txn *entity.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.txns[txn.ID]
	if !ok || stored.IsDeleted {
		return errs.ErrTransactionNotFound
	}
	r.store.txns[txn.ID] = copyTxn(txn)
	return nil
}

func (r *fakeTxnRepo) SoftDelete(ctx context.Context, userID, txnID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	txn, ok := r.store.txns[txnID]
	if !ok || txn.UserID != userID || txn.IsDeleted {
		return errs.ErrTransactionNotFound
	}
	txn.IsDeleted = true
	return nil
}

func (r *fakeTxnRepo) SoftDeleteMany(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var affected int64
	for _, id := range txnIDs {
		txn, ok := r.store.txns[id]
		if !ok || txn.UserID != userID || txn.IsDeleted {
			continue
		}
		txn.IsDeleted = true
		affected++
	}
	return affected, nil
}

func (r *fakeTxnRepo) List(ctx context.Context, userID uuid.UUID, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Transaction
	for _, txn := range r.store.txns {
		if txn.UserID != userID || txn.IsDeleted {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.AccountID != nil && txn.AccountID != *filter.AccountID {
			if txn.ToAccountID == nil || *txn.ToAccountID != *filter.AccountID {
				continue
			}
		}
		out = append(out, copyTxn(txn))
	}
	return out, nil
}

type fakeAccountRepo struct {
	store *memStore
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *account
	r.store.accounts[account.ID] = &c
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, userID, accountID uuid.UUID) (*entity.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.accounts[accountID]
	if !ok || acc.UserID != userID || acc.IsDeleted {
		return nil, errs.ErrAccountNotFound
	}
	c := *acc
	return &c, nil
}

func (r *fakeAccountRepo) List(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Account
	for _, acc := range r.store.accounts {
		if acc.UserID == userID && !acc.IsDeleted {
			c := *acc
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) UpdateMetadata(ctx context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.accounts[account.ID]
	if !ok || stored.IsDeleted {
		return errs.ErrAccountNotFound
	}
	balance := stored.BalanceInCents
	c := *account
	c.BalanceInCents = balance
	r.store.accounts[account.ID] = &c
	return nil
}

func (r *fakeAccountRepo) IncrementBalance(ctx context.Context, userID, accountID uuid.UUID, deltaInCents int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.accounts[accountID]
	if !ok || acc.UserID != userID || acc.IsDeleted {
		return errs.ErrAccountNotFound
	}
	acc.BalanceInCents += deltaInCents
	return nil
}

func (r *fakeAccountRepo) SoftDelete(ctx context.Context, userID, accountID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	acc, ok := r.store.accounts[accountID]
	if !ok || acc.UserID != userID || acc.IsDeleted {
		return errs.ErrAccountNotFound
	}
	acc.IsDeleted = true
	return nil
}

type fakeCategoryRepo struct {
	store *memStore
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *category
	r.store.categories[category.ID] = &c
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, userID, categoryID uuid.UUID) (*entity.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cat, ok := r.store.categories[categoryID]
	if !ok || cat.UserID != userID || cat.IsDeleted {
		return nil, errs.ErrCategoryNotFound
	}
	c := *cat
	return &c, nil
}

func (r *fakeCategoryRepo) FindByNameAndType(ctx context.Context, userID uuid.UUID, name string, categoryType entity.CategoryType) (*entity.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, cat := range r.store.categories {
		if cat.UserID == userID && !cat.IsDeleted && cat.Name == name && cat.Type == categoryType {
			c := *cat
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) List(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Category
	for _, cat := range r.store.categories {
		if cat.UserID == userID && !cat.IsDeleted {
			c := *cat
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) UpdateName(ctx context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.categories[category.ID]
	if !ok || stored.IsDeleted {
		return errs.ErrCategoryNotFound
	}
	stored.Name = category.Name
	return nil
}

func (r *fakeCategoryRepo) SoftDelete(ctx context.Context, userID, categoryID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cat, ok := r.store.categories[categoryID]
	if !ok || cat.UserID != userID || cat.IsDeleted {
		return errs.ErrCategoryNotFound
	}
	cat.IsDeleted = true
	return nil
}

type lockKey struct {
	userID    uuid.UUID
	accountID uuid.UUID
}

// fakeLockRepo tracks held locks in memory. stuck marks accounts whose lock
// can never be acquired, for contention tests.
type fakeLockRepo struct {
	mu       sync.Mutex
	held     map[lockKey]bool
	stuck    map[uuid.UUID]bool
	acquires []uuid.UUID
	releases []uuid.UUID
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{
		held:  make(map[lockKey]bool),
		stuck: make(map[uuid.UUID]bool),
	}
}

func (r *fakeLockRepo) AcquireLock(ctx context.Context, userID, accountID uuid.UUID, ttl core.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stuck[accountID] {
		return false, nil
	}
	key := lockKey{userID: userID, accountID: accountID}
	if r.held[key] {
		return false, nil
	}
	r.held[key] = true
	r.acquires = append(r.acquires, accountID)
	return true, nil
}

func (r *fakeLockRepo) ReleaseLock(ctx context.Context, userID, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := lockKey{userID: userID, accountID: accountID}
	if !r.held[key] {
		return fmt.Errorf("lock not held for account %s", accountID)
	}
	delete(r.held, key)
	r.releases = append(r.releases, accountID)
	return nil
}

func (r *fakeLockRepo) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *fakeLockRepo) heldCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.held)
}
