package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
)

func validCardMeta() *CreditCardMeta {
	return &CreditCardMeta{CreditLimitInCents: 500000, BillingDay: 15, DueInDays: 20}
}

func TestNewAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("creates a plain account", func(t *testing.T) {
		acc, err := NewAccount(userID, "Main Checking", AccountTypeCurrent, nil)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, acc.ID)
		assert.Equal(t, int64(0), acc.BalanceInCents)
		assert.Nil(t, acc.CreditCard)
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := NewAccount(userID, "", AccountTypeCash, nil)

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewAccount(userID, "Stocks", AccountType("brokerage"), nil)

		assert.ErrorIs(t, err, errs.ErrInvalidAccountType)
	})

	t.Run("credit card requires metadata", func(t *testing.T) {
		_, err := NewAccount(userID, "Visa", AccountTypeCreditCard, nil)

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("credit card with metadata succeeds", func(t *testing.T) {
		acc, err := NewAccount(userID, "Visa", AccountTypeCreditCard, validCardMeta())

		require.NoError(t, err)
		require.NotNil(t, acc.CreditCard)
		assert.Equal(t, int64(500000), acc.CreditCard.CreditLimitInCents)
	})

	t.Run("metadata on a non-card account is rejected", func(t *testing.T) {
		_, err := NewAccount(userID, "Cash", AccountTypeCash, validCardMeta())

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestCreditCardMetaValidate(t *testing.T) {
	tests := []struct {
		name string
		meta CreditCardMeta
	}{
		{name: "zero limit", meta: CreditCardMeta{CreditLimitInCents: 0, BillingDay: 15, DueInDays: 20}},
		{name: "negative limit", meta: CreditCardMeta{CreditLimitInCents: -100, BillingDay: 15, DueInDays: 20}},
		{name: "billing day too low", meta: CreditCardMeta{CreditLimitInCents: 100, BillingDay: 0, DueInDays: 20}},
		{name: "billing day too high", meta: CreditCardMeta{CreditLimitInCents: 100, BillingDay: 32, DueInDays: 20}},
		{name: "zero due days", meta: CreditCardMeta{CreditLimitInCents: 100, BillingDay: 15, DueInDays: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.meta.Validate(), errs.ErrInvalidRequest)
		})
	}

	valid := validCardMeta()
	assert.NoError(t, valid.Validate())
}

func TestAllowsTransactionType(t *testing.T) {
	userID := uuid.New()

	t.Run("credit card disallows income", func(t *testing.T) {
		acc, err := NewAccount(userID, "Visa", AccountTypeCreditCard, validCardMeta())
		require.NoError(t, err)

		assert.ErrorIs(t, acc.AllowsTransactionType(TxnTypeIncome), errs.ErrAccountCapability)
		assert.NoError(t, acc.AllowsTransactionType(TxnTypeExpense))
		assert.NoError(t, acc.AllowsTransactionType(TxnTypeTransfer))
	})

	t.Run("loan disallows expense and income", func(t *testing.T) {
		acc, err := NewAccount(userID, "Mortgage", AccountTypeLoan, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, acc.AllowsTransactionType(TxnTypeExpense), errs.ErrAccountCapability)
		assert.ErrorIs(t, acc.AllowsTransactionType(TxnTypeIncome), errs.ErrAccountCapability)
		assert.NoError(t, acc.AllowsTransactionType(TxnTypeTransfer))
	})

	t.Run("adjustments are always permitted", func(t *testing.T) {
		for _, accountType := range []AccountType{AccountTypeCash, AccountTypeLoan, AccountTypeCreditCard} {
			var meta *CreditCardMeta
			if accountType == AccountTypeCreditCard {
				meta = validCardMeta()
			}
			acc, err := NewAccount(userID, "Acct", accountType, meta)
			require.NoError(t, err)

			assert.NoError(t, acc.AllowsTransactionType(TxnTypeAdjustment), string(accountType))
		}
	})

	t.Run("unknown transaction type is rejected", func(t *testing.T) {
		acc, err := NewAccount(userID, "Cash", AccountTypeCash, nil)
		require.NoError(t, err)

		assert.ErrorIs(t, acc.AllowsTransactionType(TxnType("refund")), errs.ErrInvalidTransactionType)
	})
}

func TestOpeningDirection(t *testing.T) {
	userID := uuid.New()

	cash, err := NewAccount(userID, "Cash", AccountTypeCash, nil)
	require.NoError(t, err)
	assert.Equal(t, DirectionCredit, cash.OpeningDirection())

	card, err := NewAccount(userID, "Visa", AccountTypeCreditCard, validCardMeta())
	require.NoError(t, err)
	assert.Equal(t, DirectionDebit, card.OpeningDirection())
}

func TestAccountTypeCapabilities(t *testing.T) {
	caps, ok := AccountTypeCreditCard.Capabilities()
	require.True(t, ok)
	assert.Equal(t, AccountClassLiability, caps.Class)
	assert.False(t, caps.AllowsIncome)

	caps, ok = AccountTypeDebitCard.Capabilities()
	require.True(t, ok)
	assert.Equal(t, AccountClassLinkedAsset, caps.Class)

	_, ok = AccountType("brokerage").Capabilities()
	assert.False(t, ok)
}
