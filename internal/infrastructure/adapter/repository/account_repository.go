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
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/model"
)

// AccountRepository implements the AccountRepository port using GORM
type AccountRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *AccountRepository) entityToModel(account *entity.Account) model.Account {
	m := model.Account{
		ID:             account.ID,
		UserID:         account.UserID,
		Name:           account.Name,
		Type:           string(account.Type),
		BalanceInCents: account.BalanceInCents,
		IsDeleted:      account.IsDeleted,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
	if account.CreditCard != nil {
		limit := account.CreditCard.CreditLimitInCents
		billingDay := account.CreditCard.BillingDay
		dueInDays := account.CreditCard.DueInDays
		m.CreditLimitInCents = &limit
		m.BillingDay = &billingDay
		m.DueInDays = &dueInDays
	}
	return m
}

func (r *AccountRepository) modelToEntity(m *model.Account) *entity.Account {
	account := &entity.Account{
		ID:             m.ID,
		UserID:         m.UserID,
		Name:           m.Name,
		Type:           entity.AccountType(m.Type),
		BalanceInCents: m.BalanceInCents,
		IsDeleted:      m.IsDeleted,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.CreditLimitInCents != nil && m.BillingDay != nil && m.DueInDays != nil {
		account.CreditCard = &entity.CreditCardMeta{
			CreditLimitInCents: *m.CreditLimitInCents,
			BillingDay:         *m.BillingDay,
			DueInDays:          *m.DueInDays,
		}
	}
	return account
}

// Create persists a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := r.entityToModel(account)

	result := r.db.WithContext(ctx).Create(&accountModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrDuplicateAccount
		}
		r.logger.Error("Failed to create account", map[string]any{
			"account_id": account.ID.String(),
			"user_id":    account.UserID.String(),
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	account.CreatedAt = accountModel.CreatedAt
	account.UpdatedAt = accountModel.UpdatedAt
	return nil
}

// GetByID retrieves a live account scoped to one user
func (r *AccountRepository) GetByID(ctx context.Context, userID, accountID uuid.UUID) (*entity.Account, error) {
	var m model.Account
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", accountID, userID, false).
		First(&m)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", errs.ErrAccountNotFound, accountID)
		}
		r.logger.Error("Failed to get account", map[string]any{
			"account_id": accountID.String(),
			"user_id":    userID.String(),
			"error":      result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&m), nil
}

// List retrieves every live account of a user
func (r *AccountRepository) List(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error) {
	var rows []model.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at ASC").
		Find(&rows).Error

	if err != nil {
		r.logger.Error("Failed to list accounts", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	out := make([]*entity.Account, 0, len(rows))
	for i := range rows {
		out = append(out, r.modelToEntity(&rows[i]))
	}
	return out, nil
}

// UpdateMetadata persists non-monetary account fields. The cached balance is
// deliberately excluded; only IncrementBalance may touch it.
func (r *AccountRepository) UpdateMetadata(ctx context.Context, account *entity.Account) error {
	m := r.entityToModel(account)

	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", account.ID, account.UserID, false).
		Updates(map[string]interface{}{
			"name":                  m.Name,
			"credit_limit_in_cents": m.CreditLimitInCents,
			"billing_day":           m.BillingDay,
			"due_in_days":           m.DueInDays,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update account", map[string]any{
			"account_id": account.ID.String(),
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, account.ID)
	}
	return nil
}

// IncrementBalance applies a relative adjustment to the cached balance.
// The arithmetic happens in the database so concurrent deltas never lose
// updates.
func (r *AccountRepository) IncrementBalance(ctx context.Context, userID, accountID uuid.UUID, deltaInCents int64) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", accountID, userID, false).
		Update("balance_in_cents", gorm.Expr("balance_in_cents + ?", deltaInCents))

	if result.Error != nil {
		r.logger.Error("Failed to increment balance", map[string]any{
			"account_id":  accountID.String(),
			"user_id":     userID.String(),
			"delta_cents": deltaInCents,
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, accountID)
	}

	r.logger.Debug("Account balance incremented", map[string]any{
		"account_id":  accountID.String(),
		"delta_cents": deltaInCents,
	})
	return nil
}

// SoftDelete marks a live account deleted
func (r *AccountRepository) SoftDelete(ctx context.Context, userID, accountID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", accountID, userID, false).
		Update("is_deleted", true)

	if result.Error != nil {
		r.logger.Error("Failed to archive account", map[string]any{
			"account_id": accountID.String(),
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, accountID)
	}
	return nil
}
