package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// AccountRepository defines account persistence operations
type AccountRepository interface {
	// Create persists a new account
	Create(ctx context.Context, account *entity.Account) error

	// GetByID retrieves a live account scoped to one user
	GetByID(ctx context.Context, userID, accountID uuid.UUID) (*entity.Account, error)

	// List retrieves every live account of a user
	List(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error)

	// UpdateMetadata persists non-monetary account fields
	UpdateMetadata(ctx context.Context, account *entity.Account) error

	// IncrementBalance applies a relative adjustment to the cached balance.
	// The write is unconditional; correctness comes from the projection
	// math, not from a compare-and-swap.
	IncrementBalance(ctx context.Context, userID, accountID uuid.UUID, deltaInCents int64) error

	// SoftDelete marks a live account deleted
	SoftDelete(ctx context.Context, userID, accountID uuid.UUID) error
}
