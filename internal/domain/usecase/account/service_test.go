package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

type nopLogger struct{}

func (nopLogger) SetLevel(core.LogLevel)       {}
func (nopLogger) GetLevel() core.LogLevel      { return core.LogLevelError }
func (nopLogger) Debug(string, map[string]any) {}
func (nopLogger) Info(string, map[string]any)  {}
func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Error(string, map[string]any) {}
func (nopLogger) Flush() error                 { return nil }

type stubTimeProvider struct{ now time.Time }

func (p *stubTimeProvider) Now() time.Time                  { return p.now }
func (p *stubTimeProvider) Since(t time.Time) core.Duration { return core.Duration(p.now.Sub(t)) }
func (p *stubTimeProvider) Until(t time.Time) core.Duration { return core.Duration(t.Sub(p.now)) }
func (p *stubTimeProvider) Sleep(core.Duration)             {}
func (p *stubTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}
func (p *stubTimeProvider) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}

type memState struct {
	accounts map[uuid.UUID]*entity.Account
	txns     map[uuid.UUID]*entity.Transaction
}

type fakeUOW struct {
	state     *memState
	commits   int
	rollbacks int
}

func (u *fakeUOW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *fakeUOW) Commit(ctx context.Context) error                   { u.commits++; return nil }
func (u *fakeUOW) Rollback(ctx context.Context) error                 { u.rollbacks++; return nil }
func (u *fakeUOW) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return &fakeTxnRepo{state: u.state}
}
func (u *fakeUOW) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return &fakeAccountRepo{state: u.state}
}
func (u *fakeUOW) GetCategoryRepository(ctx context.Context) persistence.CategoryRepository {
	return nil
}

type fakeAccountRepo struct{ state *memState }

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	c := *account
	r.state.accounts[account.ID] = &c
	return nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, userID, accountID uuid.UUID) (*entity.Account, error) {
	acc, ok := r.state.accounts[accountID]
	if !ok || acc.UserID != userID || acc.IsDeleted {
		return nil, errs.ErrAccountNotFound
	}
	c := *acc
	return &c, nil
}

func (r *fakeAccountRepo) List(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error) {
	var out []*entity.Account
	for _, acc := range r.state.accounts {
		if acc.UserID == userID && !acc.IsDeleted {
			c := *acc
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) UpdateMetadata(ctx context.Context, account *entity.Account) error {
	stored, ok := r.state.accounts[account.ID]
	if !ok || stored.IsDeleted {
		return errs.ErrAccountNotFound
	}
	balance := stored.BalanceInCents
	c := *account
	c.BalanceInCents = balance
	r.state.accounts[account.ID] = &c
	return nil
}

func (r *fakeAccountRepo) IncrementBalance(ctx context.Context, userID, accountID uuid.UUID, deltaInCents int64) error {
	acc, ok := r.state.accounts[accountID]
	if !ok || acc.UserID != userID || acc.IsDeleted {
		return errs.ErrAccountNotFound
	}
	acc.BalanceInCents += deltaInCents
	return nil
}

func (r *fakeAccountRepo) SoftDelete(ctx context.Context, userID, accountID uuid.UUID) error {
	acc, ok := r.state.accounts[accountID]
	if !ok || acc.UserID != userID || acc.IsDeleted {
		return errs.ErrAccountNotFound
	}
	acc.IsDeleted = true
	return nil
}

// fakeTxnRepo implements only what account creation touches
type fakeTxnRepo struct{ state *memState }

func (r *fakeTxnRepo) Create(ctx context.Context, txn *entity.Transaction) error {
	c := *txn
	r.state.txns[txn.ID] = &c
	return nil
}

func (r *fakeTxnRepo) GetByID(ctx context.Context, userID, txnID uuid.UUID) (*entity.Transaction, error) {
	return nil, errs.ErrTransactionNotFound
}

func (r *fakeTxnRepo) FindByClientTxnID(ctx context.Context, userID uuid.UUID, clientTxnID string) (*entity.Transaction, error) {
	return nil, nil
}

func (r *fakeTxnRepo) FindOpeningBalance(ctx context.Context, userID, accountID uuid.UUID) (*entity.Transaction, error) {
	for _, txn := range r.state.txns {
		if txn.UserID == userID && txn.AccountID == accountID && txn.Type == entity.TxnTypeOpeningBalance && !txn.IsDeleted {
			c := *txn
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeTxnRepo) UpdateCheckpoint(ctx context.Context, txnID uuid.UUID, direction entity.Direction, amountInCents int64) error {
	return errs.ErrTransactionNotFound
}

func (r *fakeTxnRepo) Update(ctx context.Context, txn *entity.Transaction) error {
	return errs.ErrTransactionNotFound
}

func (r *fakeTxnRepo) SoftDelete(ctx context.Context, userID, txnID uuid.UUID) error {
	return errs.ErrTransactionNotFound
}

func (r *fakeTxnRepo) SoftDeleteMany(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeTxnRepo) List(ctx context.Context, userID uuid.UUID, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	return nil, nil
}

func newService() (*Service, *memState, uuid.UUID) {
	state := &memState{
		accounts: make(map[uuid.UUID]*entity.Account),
		txns:     make(map[uuid.UUID]*entity.Transaction),
	}
	uow := &fakeUOW{state: state}
	tp := &stubTimeProvider{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	return NewService(uow, nopLogger{}, tp), state, uuid.New()
}

func cardMeta() *entity.CreditCardMeta {
	return &entity.CreditCardMeta{CreditLimitInCents: 500000, BillingDay: 10, DueInDays: 15}
}

func openingBalanceOf(state *memState, accountID uuid.UUID) *entity.Transaction {
	for _, txn := range state.txns {
		if txn.AccountID == accountID && txn.Type == entity.TxnTypeOpeningBalance {
			return txn
		}
	}
	return nil
}

func TestCreate(t *testing.T) {
	t.Run("zero opening balance writes no checkpoint", func(t *testing.T) {
		svc, state, userID := newService()

		acc, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Checking", Type: entity.AccountTypeCurrent,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(0), acc.BalanceInCents)
		assert.Nil(t, openingBalanceOf(state, acc.ID))
	})

	t.Run("positive opening balance writes a credit checkpoint", func(t *testing.T) {
		svc, state, userID := newService()

		acc, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Checking", Type: entity.AccountTypeCurrent, InitialBalance: "1000.00",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(100000), acc.BalanceInCents)

		checkpoint := openingBalanceOf(state, acc.ID)
		require.NotNil(t, checkpoint)
		assert.Equal(t, entity.DirectionCredit, checkpoint.Direction)
		assert.Equal(t, int64(100000), checkpoint.AmountInCents)
	})

	t.Run("negative opening balance writes a debit checkpoint", func(t *testing.T) {
		svc, state, userID := newService()

		acc, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Overdrawn", Type: entity.AccountTypeCurrent, InitialBalance: "-50.00",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(-5000), acc.BalanceInCents)

		checkpoint := openingBalanceOf(state, acc.ID)
		require.NotNil(t, checkpoint)
		assert.Equal(t, entity.DirectionDebit, checkpoint.Direction)
	})

	t.Run("positive opening value on a credit card is stored as debt", func(t *testing.T) {
		svc, state, userID := newService()

		acc, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Visa", Type: entity.AccountTypeCreditCard, InitialBalance: "300.00",
			CreditCard: cardMeta(),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(-30000), acc.BalanceInCents)

		checkpoint := openingBalanceOf(state, acc.ID)
		require.NotNil(t, checkpoint)
		assert.Equal(t, entity.DirectionDebit, checkpoint.Direction)
		assert.Equal(t, int64(30000), checkpoint.AmountInCents)
	})

	t.Run("duplicate name and type is rejected", func(t *testing.T) {
		svc, _, userID := newService()

		_, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Checking", Type: entity.AccountTypeCurrent,
		})
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), userID, CreateInput{
			Name: "Checking", Type: entity.AccountTypeCurrent,
		})
		assert.ErrorIs(t, err, errs.ErrDuplicateAccount)
	})

	t.Run("same name with a different type is allowed", func(t *testing.T) {
		svc, _, userID := newService()

		_, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Main", Type: entity.AccountTypeCurrent,
		})
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), userID, CreateInput{
			Name: "Main", Type: entity.AccountTypeSavings,
		})
		assert.NoError(t, err)
	})

	t.Run("malformed opening balance is rejected", func(t *testing.T) {
		svc, _, userID := newService()

		_, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Checking", Type: entity.AccountTypeCurrent, InitialBalance: "lots",
		})

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("renames an account", func(t *testing.T) {
		svc, _, userID := newService()
		acc, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Old", Type: entity.AccountTypeCurrent,
		})
		require.NoError(t, err)

		name := "New"
		updated, err := svc.Update(context.Background(), userID, acc.ID, Patch{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, "New", updated.Name)
	})

	t.Run("rename onto an existing name is rejected", func(t *testing.T) {
		svc, _, userID := newService()
		_, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "First", Type: entity.AccountTypeCurrent,
		})
		require.NoError(t, err)
		second, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Second", Type: entity.AccountTypeCurrent,
		})
		require.NoError(t, err)

		name := "First"
		_, err = svc.Update(context.Background(), userID, second.ID, Patch{Name: &name})

		assert.ErrorIs(t, err, errs.ErrDuplicateAccount)
	})

	t.Run("card details on a non-card account are rejected", func(t *testing.T) {
		svc, _, userID := newService()
		acc, err := svc.Create(context.Background(), userID, CreateInput{
			Name: "Cash", Type: entity.AccountTypeCash,
		})
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), userID, acc.ID, Patch{CreditCard: cardMeta()})

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		svc, _, userID := newService()

		_, err := svc.Update(context.Background(), userID, uuid.New(), Patch{})

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestArchive(t *testing.T) {
	svc, _, userID := newService()
	acc, err := svc.Create(context.Background(), userID, CreateInput{
		Name: "Checking", Type: entity.AccountTypeCurrent,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(context.Background(), userID, acc.ID))

	_, err = svc.Get(context.Background(), userID, acc.ID)
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)

	// archived name is free for reuse
	_, err = svc.Create(context.Background(), userID, CreateInput{
		Name: "Checking", Type: entity.AccountTypeCurrent,
	})
	assert.NoError(t, err)
}
