// Package account manages the lifecycle of accounts. Creating an account
// with a starting balance writes the opening-balance checkpoint transaction
// and the cached balance in the same unit of work.
package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

// CreateInput carries everything needed to open an account. InitialBalance
// is a signed decimal string; empty means zero. On credit cards a positive
// value is money already owed.
type CreateInput struct {
	Name           string
	Type           entity.AccountType
	InitialBalance string
	CreditCard     *entity.CreditCardMeta
}

// Patch carries the editable account fields. Type and balance are not here:
// the type fixes the capability set and the balance is a projection.
type Patch struct {
	Name       *string
	CreditCard *entity.CreditCardMeta
}

// Service manages accounts
type Service struct {
	uow          persistence.UnitOfWork
	logger       core.Logger
	timeProvider core.TimeProvider
}

// NewService creates an account service
func NewService(uow persistence.UnitOfWork, logger core.Logger, timeProvider core.TimeProvider) *Service {
	return &Service{uow: uow, logger: logger, timeProvider: timeProvider}
}

// Create opens a new account. A nonzero initial balance becomes the
// opening-balance checkpoint, dated now, with the cached balance set to
// match atomically.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*entity.Account, error) {
	account, err := entity.NewAccount(userID, input.Name, input.Type, input.CreditCard)
	if err != nil {
		return nil, err
	}

	var openingCents int64
	if input.InitialBalance != "" {
		openingCents, err = entity.ParseSignedAmount(input.InitialBalance)
		if err != nil {
			return nil, err
		}
	}
	// positive opening value on a credit card is debt
	if account.Type == entity.AccountTypeCreditCard {
		openingCents = -openingCents
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	committed := false
	defer s.rollbackUnlessCommitted(txCtx, &committed)

	accounts := s.uow.GetAccountRepository(txCtx)
	txns := s.uow.GetTransactionRepository(txCtx)

	if err := s.checkDuplicate(txCtx, accounts, userID, account.Name, account.Type, uuid.Nil); err != nil {
		return nil, err
	}

	if err := accounts.Create(txCtx, account); err != nil {
		return nil, fmt.Errorf("failed to persist account: %w", err)
	}

	if openingCents != 0 {
		checkpoint := entity.NewOpeningBalance(userID, account.ID, openingCents, s.timeProvider.Now())
		if err := txns.Create(txCtx, checkpoint); err != nil {
			return nil, fmt.Errorf("failed to persist opening balance: %w", err)
		}
		if err := accounts.IncrementBalance(txCtx, userID, account.ID, openingCents); err != nil {
			return nil, fmt.Errorf("failed to set opening balance: %w", err)
		}
		account.BalanceInCents = openingCents
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit account creation: %w", err)
	}
	committed = true

	s.logger.Info("Account created", map[string]any{
		"user_id":       userID.String(),
		"account_id":    account.ID.String(),
		"type":          string(account.Type),
		"opening_cents": openingCents,
	})
	return account, nil
}

// Get retrieves one live account.
func (s *Service) Get(ctx context.Context, userID, accountID uuid.UUID) (*entity.Account, error) {
	return s.uow.GetAccountRepository(ctx).GetByID(ctx, userID, accountID)
}

// List retrieves every live account of a user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*entity.Account, error) {
	return s.uow.GetAccountRepository(ctx).List(ctx, userID)
}

// Update edits account metadata. Type and balance stay untouched.
func (s *Service) Update(ctx context.Context, userID, accountID uuid.UUID, patch Patch) (*entity.Account, error) {
	if patch.Name == nil && patch.CreditCard == nil {
		return nil, fmt.Errorf("%w: no editable fields in patch", errs.ErrInvalidRequest)
	}

	accounts := s.uow.GetAccountRepository(ctx)

	account, err := accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", errs.ErrInvalidRequest)
		}
		if err := s.checkDuplicate(ctx, accounts, userID, *patch.Name, account.Type, account.ID); err != nil {
			return nil, err
		}
		account.Name = *patch.Name
	}

	if patch.CreditCard != nil {
		if account.Type != entity.AccountTypeCreditCard {
			return nil, fmt.Errorf("%w: card details are only valid for credit card accounts", errs.ErrInvalidRequest)
		}
		if err := patch.CreditCard.Validate(); err != nil {
			return nil, err
		}
		account.CreditCard = patch.CreditCard
	}

	if err := accounts.UpdateMetadata(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to persist account changes: %w", err)
	}

	s.logger.Info("Account updated", map[string]any{
		"user_id":    userID.String(),
		"account_id": accountID.String(),
	})
	return account, nil
}

// Archive soft-deletes an account. Its transactions stay in place; listing
// and projection exclude archived accounts.
func (s *Service) Archive(ctx context.Context, userID, accountID uuid.UUID) error {
	if err := s.uow.GetAccountRepository(ctx).SoftDelete(ctx, userID, accountID); err != nil {
		return err
	}

	s.logger.Info("Account archived", map[string]any{
		"user_id":    userID.String(),
		"account_id": accountID.String(),
	})
	return nil
}

// checkDuplicate rejects a second live account with the same name and type.
// excludeID skips the account being renamed.
func (s *Service) checkDuplicate(ctx context.Context, accounts persistence.AccountRepository, userID uuid.UUID, name string, accountType entity.AccountType, excludeID uuid.UUID) error {
	existing, err := accounts.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	for _, a := range existing {
		if a.ID != excludeID && a.Name == name && a.Type == accountType {
			return fmt.Errorf("%w: %s (%s)", errs.ErrDuplicateAccount, name, accountType)
		}
	}
	return nil
}

func (s *Service) rollbackUnlessCommitted(txCtx context.Context, committed *bool) {
	if *committed {
		return
	}
	if err := s.uow.Rollback(txCtx); err != nil {
		s.logger.Error("Rollback failed", map[string]any{"error": err.Error()})
	}
}
