package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
)

// CategoryType ties a category to the transaction types it may label
type CategoryType string

const (
	// CategoryTypeExpense labels expense transactions
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeIncome labels income transactions
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeSelf labels transfers and adjustments between own accounts
	CategoryTypeSelf CategoryType = "self"
)

// Valid reports whether the category type is known.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome || t == CategoryTypeSelf
}

// Matches reports whether a category of this type may label a transaction of
// the given type.
func (t CategoryType) Matches(txnType TxnType) bool {
	switch txnType {
	case TxnTypeExpense:
		return t == CategoryTypeExpense
	case TxnTypeIncome:
		return t == CategoryTypeIncome
	case TxnTypeTransfer, TxnTypeAdjustment:
		return t == CategoryTypeSelf
	}
	return false
}

// Category labels transactions for reporting. Names are stored lowercase and
// are unique per user within a type.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Type      CategoryType
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory builds a validated category with a normalized name.
func NewCategory(userID uuid.UUID, name string, categoryType CategoryType) (*Category, error) {
	name = NormalizeCategoryName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", errs.ErrInvalidRequest)
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCategoryType, categoryType)
	}

	return &Category{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Type:   categoryType,
	}, nil
}

// NormalizeCategoryName lowercases and trims a category name.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
