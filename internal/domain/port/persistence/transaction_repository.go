package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// TransactionFilter narrows transaction listings. Zero values mean "no
// constraint".
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       entity.TxnType
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TransactionRepository defines ledger transaction persistence operations
type TransactionRepository interface {
	// Create persists a new transaction row
	Create(ctx context.Context, txn *entity.Transaction) error

	// GetByID retrieves a live transaction scoped to one user
	GetByID(ctx context.Context, userID, txnID uuid.UUID) (*entity.Transaction, error)

	// FindByClientTxnID retrieves a live transaction by its idempotency key.
	// Returns nil without error when no such row exists.
	FindByClientTxnID(ctx context.Context, userID uuid.UUID, clientTxnID string) (*entity.Transaction, error)

	// FindOpeningBalance retrieves the account's live checkpoint row.
	// Returns nil without error when the account has none.
	FindOpeningBalance(ctx context.Context, userID, accountID uuid.UUID) (*entity.Transaction, error)

	// UpdateCheckpoint rewrites the monetary state of a checkpoint row
	UpdateCheckpoint(ctx context.Context, txnID uuid.UUID, direction entity.Direction, amountInCents int64) error

	// Update persists the mutable state of an existing row
	Update(ctx context.Context, txn *entity.Transaction) error

	// SoftDelete marks one live transaction deleted
	SoftDelete(ctx context.Context, userID, txnID uuid.UUID) error

	// SoftDeleteMany marks a set of live transactions deleted and returns the
	// number of rows affected
	SoftDeleteMany(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID) (int64, error)

	// List retrieves live transactions for a user, newest first
	List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]*entity.Transaction, error)
}
