package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	coreport "github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/model"
)

// TransactionRepository implements the TransactionRepository port using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(txn *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:            txn.ID,
		UserID:        txn.UserID,
		AccountID:     txn.AccountID,
		ToAccountID:   txn.ToAccountID,
		CategoryID:    txn.CategoryID,
		Type:          string(txn.Type),
		Direction:     string(txn.Direction),
		AmountInCents: txn.AmountInCents,
		Note:          txn.Note,
		OccurredAt:    txn.OccurredAt,
		Timezone:      txn.Timezone,
		ClientTxnID:   txn.ClientTxnID,
		IsDeleted:     txn.IsDeleted,
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}
}

// modelToEntity converts a database model to a transaction entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		UserID:        m.UserID,
		AccountID:     m.AccountID,
		ToAccountID:   m.ToAccountID,
		CategoryID:    m.CategoryID,
		Type:          entity.TxnType(m.Type),
		Direction:     entity.Direction(m.Direction),
		AmountInCents: m.AmountInCents,
		Note:          m.Note,
		OccurredAt:    m.OccurredAt,
		Timezone:      m.Timezone,
		ClientTxnID:   m.ClientTxnID,
		IsDeleted:     m.IsDeleted,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// liveScope narrows a query to one user's non-deleted rows
func (r *TransactionRepository) liveScope(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false)
}

// Create saves a new transaction row
func (r *TransactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": txn.ID.String(),
		"user_id":        txn.UserID.String(),
	})

	txnModel := r.entityToModel(txn)

	result := r.db.WithContext(ctx).Create(&txnModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"transaction_id": txn.ID.String(),
				"client_txn_id":  txn.ClientTxnID,
				"user_id":        txn.UserID.String(),
			})
			return errs.ErrDuplicateTransaction
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"transaction_id": txn.ID.String(),
			"user_id":        txn.UserID.String(),
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	txn.CreatedAt = txnModel.CreatedAt
	txn.UpdatedAt = txnModel.UpdatedAt
	return nil
}

// GetByID retrieves a live transaction scoped to one user
func (r *TransactionRepository) GetByID(ctx context.Context, userID, txnID uuid.UUID) (*entity.Transaction, error) {
	var m model.Transaction
	result := r.liveScope(ctx, userID).Where("id = ?", txnID).First(&m)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, txnID)
		}
		r.logger.Error("Failed to get transaction", map[string]any{
			"transaction_id": txnID.String(),
			"user_id":        userID.String(),
			"error":          result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// FindByClientTxnID retrieves a live transaction by its idempotency key
func (r *TransactionRepository) FindByClientTxnID(ctx context.Context, userID uuid.UUID, clientTxnID string) (*entity.Transaction, error) {
	if clientTxnID == "" {
		return nil, nil
	}

	var m model.Transaction
	result := r.liveScope(ctx, userID).Where("client_txn_id = ?", clientTxnID).First(&m)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// FindOpeningBalance retrieves the account's live checkpoint row
func (r *TransactionRepository) FindOpeningBalance(ctx context.Context, userID, accountID uuid.UUID) (*entity.Transaction, error) {
	var m model.Transaction
	result := r.liveScope(ctx, userID).
		Where("account_id = ? AND type = ?", accountID, string(entity.TxnTypeOpeningBalance)).
		First(&m)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// UpdateCheckpoint rewrites the monetary state of a checkpoint row
func (r *TransactionRepository) UpdateCheckpoint(ctx context.Context, txnID uuid.UUID, direction entity.Direction, amountInCents int64) error {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND type = ? AND is_deleted = ?", txnID, string(entity.TxnTypeOpeningBalance), false).
		Updates(map[string]interface{}{
			"direction":       string(direction),
			"amount_in_cents": amountInCents,
		})

	if result.Error != nil {
		r.logger.Error("Failed to rewrite checkpoint", map[string]any{
			"transaction_id": txnID.String(),
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: checkpoint %s", errs.ErrTransactionNotFound, txnID)
	}
	return nil
}

// Update persists the mutable fields of an existing row
func (r *TransactionRepository) Update(ctx context.Context, txn *entity.Transaction) error {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", txn.ID, txn.UserID, false).
		Updates(map[string]interface{}{
			"note":        txn.Note,
			"category_id": txn.CategoryID,
			"occurred_at": txn.OccurredAt,
			"timezone":    txn.Timezone,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"transaction_id": txn.ID.String(),
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, txn.ID)
	}
	return nil
}

// SoftDelete marks one live transaction deleted
func (r *TransactionRepository) SoftDelete(ctx context.Context, userID, txnID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", txnID, userID, false).
		Update("is_deleted", true)

	if result.Error != nil {
		r.logger.Error("Failed to soft-delete transaction", map[string]any{
			"transaction_id": txnID.String(),
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, txnID)
	}
	return nil
}

// SoftDeleteMany marks a set of live transactions deleted
func (r *TransactionRepository) SoftDeleteMany(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID) (int64, error) {
	if len(txnIDs) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id IN ? AND user_id = ? AND is_deleted = ?", txnIDs, userID, false).
		Update("is_deleted", true)

	if result.Error != nil {
		r.logger.Error("Failed to soft-delete transactions", map[string]any{
			"user_id": userID.String(),
			"count":   len(txnIDs),
			"error":   result.Error.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return result.RowsAffected, nil
}

// List retrieves live transactions for a user, newest first
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	query := r.liveScope(ctx, userID)

	if filter.AccountID != nil {
		query = query.Where("account_id = ? OR to_account_id = ?", *filter.AccountID, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Transaction
	if err := query.Order("occurred_at DESC, created_at DESC").Find(&rows).Error; err != nil {
		r.logger.Error("Failed to list transactions", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	out := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, r.modelToEntity(&rows[i]))
	}
	return out, nil
}
