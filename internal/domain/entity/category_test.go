package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
)

func TestNewCategory(t *testing.T) {
	userID := uuid.New()

	t.Run("normalizes the name", func(t *testing.T) {
		cat, err := NewCategory(userID, "  Groceries  ", CategoryTypeExpense)

		require.NoError(t, err)
		assert.Equal(t, "groceries", cat.Name)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := NewCategory(userID, "   ", CategoryTypeExpense)

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewCategory(userID, "misc", CategoryType("other"))

		assert.ErrorIs(t, err, errs.ErrInvalidCategoryType)
	})
}

func TestCategoryTypeMatches(t *testing.T) {
	tests := []struct {
		category CategoryType
		txn      TxnType
		want     bool
	}{
		{CategoryTypeExpense, TxnTypeExpense, true},
		{CategoryTypeExpense, TxnTypeIncome, false},
		{CategoryTypeIncome, TxnTypeIncome, true},
		{CategoryTypeIncome, TxnTypeExpense, false},
		{CategoryTypeSelf, TxnTypeTransfer, true},
		{CategoryTypeSelf, TxnTypeAdjustment, true},
		{CategoryTypeSelf, TxnTypeExpense, false},
		{CategoryTypeExpense, TxnTypeOpeningBalance, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.category.Matches(tt.txn),
			"%s labeling %s", tt.category, tt.txn)
	}
}
