package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
)

// AccountLockRepository serializes balance mutations per account across
// processes. Locks expire so a crashed holder cannot wedge an account.
type AccountLockRepository interface {
	// AcquireLock attempts to take the lock for one account. Returns true
	// when the lock was acquired, false when another holder owns it.
	AcquireLock(ctx context.Context, userID, accountID uuid.UUID, ttl core.Duration) (bool, error)

	// ReleaseLock releases the lock for one account
	ReleaseLock(ctx context.Context, userID, accountID uuid.UUID) error

	// CleanupExpiredLocks removes locks past their expiry and returns how
	// many were removed
	CleanupExpiredLocks(ctx context.Context) (int64, error)
}
