package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	coreport "github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/model"
)

// AccountLockRepository implements per-account advisory locking using GORM.
// A single upsert either inserts the lock row or steals an expired one; a
// live lock held by someone else affects zero rows.
type AccountLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountLockRepository creates a new AccountLockRepository instance
func NewAccountLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountLockRepository {
	return &AccountLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// AcquireLock attempts to take the lock for one account
func (r *AccountLockRepository) AcquireLock(ctx context.Context, userID, accountID uuid.UUID, ttl coreport.Duration) (bool, error) {
	r.logger.Debug("Attempting to acquire account lock", map[string]any{
		"user_id":    userID.String(),
		"account_id": accountID.String(),
		"ttl":        ttl.Std().String(),
	})

	now := r.timeProvider.Now()
	expiresAt := now.Add(ttl.Std())

	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO account_locks (user_id, account_id, locked_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, account_id) DO UPDATE
		SET locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE account_locks.expires_at <= ?`,
		userID, accountID, now, expiresAt, now, now,
		now,
	)

	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return false, nil
		}
		if isContextError(result.Error) {
			r.logger.Warn("Context timeout acquiring account lock", map[string]any{
				"user_id":    userID.String(),
				"account_id": accountID.String(),
				"error":      result.Error.Error(),
			})
			return false, fmt.Errorf("lock acquisition timeout: %w", result.Error)
		}
		r.logger.Error("Database error acquiring account lock", map[string]any{
			"user_id":    userID.String(),
			"account_id": accountID.String(),
			"error":      result.Error.Error(),
		})
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	// zero rows affected means the upsert hit a live lock
	if result.RowsAffected == 0 {
		r.logger.Debug("Account already locked", map[string]any{
			"user_id":    userID.String(),
			"account_id": accountID.String(),
		})
		return false, nil
	}

	r.logger.Debug("Account lock acquired", map[string]any{
		"user_id":    userID.String(),
		"account_id": accountID.String(),
		"expires_at": expiresAt,
	})
	return true, nil
}

// ReleaseLock releases the lock for one account
func (r *AccountLockRepository) ReleaseLock(ctx context.Context, userID, accountID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		Delete(&model.AccountLock{})

	// on a context error the lock simply expires on its own
	if result.Error != nil && isContextError(result.Error) {
		r.logger.Warn("Context timeout releasing account lock, lock will expire automatically", map[string]any{
			"user_id":    userID.String(),
			"account_id": accountID.String(),
			"error":      result.Error.Error(),
		})
		return nil
	}

	if result.Error != nil {
		r.logger.Error("Failed to release account lock", map[string]any{
			"user_id":    userID.String(),
			"account_id": accountID.String(),
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected > 0 {
		r.logger.Debug("Account lock released", map[string]any{
			"user_id":    userID.String(),
			"account_id": accountID.String(),
		})
	}
	return nil
}

// CleanupExpiredLocks removes locks past their expiry
func (r *AccountLockRepository) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	now := r.timeProvider.Now()

	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.AccountLock{})

	if result.Error != nil {
		r.logger.Error("Failed to clean up expired account locks", map[string]any{
			"error": result.Error.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired account locks removed", map[string]any{
			"locks_removed": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
