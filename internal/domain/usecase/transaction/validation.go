package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

// CreateInput carries everything needed to record a new ledger entry.
// Amount is a decimal string; money never travels as a float.
type CreateInput struct {
	Type        entity.TxnType
	Direction   entity.Direction
	Amount      string
	AccountID   uuid.UUID
	ToAccountID *uuid.UUID
	CategoryID  *uuid.UUID
	Note        string
	OccurredAt  time.Time
	Timezone    string
	ClientTxnID string
}

// Patch carries the fields an edit may touch. Monetary fields are present
// so a forbidden mutation is rejected explicitly instead of silently
// ignored.
type Patch struct {
	Note       *string
	CategoryID *uuid.UUID
	OccurredAt *time.Time
	Timezone   *string

	// immutable after creation
	Amount      *string
	Direction   *entity.Direction
	Type        *entity.TxnType
	AccountID   *uuid.UUID
	ToAccountID *uuid.UUID
}

// validate rejects patches that touch monetary semantics. Such edits must be
// modeled as delete plus recreate so the projection always sees a clean
// before/after pair.
func (p *Patch) validate() error {
	switch {
	case p.Amount != nil:
		return fmt.Errorf("%w: amount", errs.ErrImmutableField)
	case p.Direction != nil:
		return fmt.Errorf("%w: direction", errs.ErrImmutableField)
	case p.Type != nil:
		return fmt.Errorf("%w: type", errs.ErrImmutableField)
	case p.AccountID != nil:
		return fmt.Errorf("%w: accountId", errs.ErrImmutableField)
	case p.ToAccountID != nil:
		return fmt.Errorf("%w: toAccountId", errs.ErrImmutableField)
	}

	if p.Note == nil && p.CategoryID == nil && p.OccurredAt == nil && p.Timezone == nil {
		return fmt.Errorf("%w: no editable fields in patch", errs.ErrInvalidRequest)
	}
	return nil
}

// validateCreateInput checks the parts of a create request that need no
// storage access and returns the parsed amount in cents.
func validateCreateInput(input CreateInput) (int64, error) {
	if !input.Type.UserCreatable() {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidTransactionType, input.Type)
	}
	if !input.Direction.Valid() {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidDirection, input.Direction)
	}

	amountInCents, err := entity.ValidateAndConvertAmount(input.Amount)
	if err != nil {
		return 0, err
	}
	if amountInCents <= 0 {
		return 0, errs.ErrNonPositiveAmount
	}

	if input.Type == entity.TxnTypeTransfer {
		if input.ToAccountID == nil {
			return 0, errs.ErrMissingTransferAccount
		}
		if *input.ToAccountID == input.AccountID {
			return 0, errs.ErrSameAccountTransfer
		}
	} else if input.ToAccountID != nil {
		return 0, fmt.Errorf("%w: toAccountId is only valid on transfers", errs.ErrInvalidRequest)
	}

	if input.OccurredAt.IsZero() {
		return 0, fmt.Errorf("%w: occurredAt is required", errs.ErrInvalidRequest)
	}

	return amountInCents, nil
}

// validateCategory enforces the category rules for one transaction type:
// expense and income entries require a live category of the matching type,
// transfers and adjustments may only carry a self category.
func validateCategory(ctx context.Context, categories persistence.CategoryRepository, userID uuid.UUID, categoryID *uuid.UUID, txnType entity.TxnType) error {
	if categoryID == nil {
		if txnType == entity.TxnTypeExpense || txnType == entity.TxnTypeIncome {
			return fmt.Errorf("%w: %s", errs.ErrCategoryRequired, txnType)
		}
		return nil
	}

	category, err := categories.GetByID(ctx, userID, *categoryID)
	if err != nil {
		return err
	}
	if !category.Type.Matches(txnType) {
		return fmt.Errorf("%w: %s category cannot label a %s", errs.ErrCategoryTypeMismatch, category.Type, txnType)
	}
	return nil
}
