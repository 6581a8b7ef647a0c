package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
)

// TxnType identifies the kind of ledger transaction
type TxnType string

const (
	// TxnTypeExpense is money leaving an account toward the outside world
	TxnTypeExpense TxnType = "expense"
	// TxnTypeIncome is money entering an account from the outside world
	TxnTypeIncome TxnType = "income"
	// TxnTypeTransfer moves money between two accounts of the same user
	TxnTypeTransfer TxnType = "transfer"
	// TxnTypeOpeningBalance is the system-managed checkpoint created with the account
	TxnTypeOpeningBalance TxnType = "opening_balance"
	// TxnTypeAdjustment is a manual correction entry
	TxnTypeAdjustment TxnType = "adjustment"
)

// Direction identifies which side of the account a transaction touches
type Direction string

const (
	// DirectionDebit decreases the account balance
	DirectionDebit Direction = "debit"
	// DirectionCredit increases the account balance
	DirectionCredit Direction = "credit"
)

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Sign returns +1 for credit and -1 for debit.
func (d Direction) Sign() int64 {
	if d == DirectionCredit {
		return 1
	}
	return -1
}

// Valid reports whether the type is in the catalog.
func (t TxnType) Valid() bool {
	switch t {
	case TxnTypeExpense, TxnTypeIncome, TxnTypeTransfer, TxnTypeOpeningBalance, TxnTypeAdjustment:
		return true
	}
	return false
}

// UserCreatable reports whether the type may be created through the API.
// Opening balances are only ever written by the system alongside account
// creation and rewritten by the checkpoint shifter.
func (t TxnType) UserCreatable() bool {
	return t.Valid() && t != TxnTypeOpeningBalance
}

// Transaction is a single ledger entry. Transfers are stored as one row
// carrying both the source account and the destination account.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	ToAccountID *uuid.UUID
	CategoryID  *uuid.UUID
	Type        TxnType
	Direction   Direction
	// AmountInCents is the non-negative magnitude; Direction carries the sign.
	AmountInCents int64
	Note          string
	OccurredAt    time.Time
	Timezone      string
	ClientTxnID   string
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTransfer reports whether the row moves money between two own accounts.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TxnTypeTransfer
}

// IsCheckpoint reports whether the row is the account's opening balance.
func (t *Transaction) IsCheckpoint() bool {
	return t.Type == TxnTypeOpeningBalance
}

// InvolvedAccounts returns every account the transaction touches,
// destination included for transfers.
func (t *Transaction) InvolvedAccounts() []uuid.UUID {
	if t.ToAccountID != nil && *t.ToAccountID != t.AccountID {
		return []uuid.UUID{t.AccountID, *t.ToAccountID}
	}
	return []uuid.UUID{t.AccountID}
}

// NewTransaction builds a validated user-created transaction. The amount is
// the non-negative magnitude in cents; direction carries the sign.
func NewTransaction(userID, accountID uuid.UUID, txnType TxnType, direction Direction, amountInCents int64, occurredAt time.Time) (*Transaction, error) {
	if !txnType.UserCreatable() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidTransactionType, txnType)
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidDirection, direction)
	}
	if amountInCents <= 0 {
		return nil, errs.ErrNonPositiveAmount
	}

	return &Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		AccountID:     accountID,
		Type:          txnType,
		Direction:     direction,
		AmountInCents: amountInCents,
		OccurredAt:    occurredAt,
	}, nil
}

// NewOpeningBalance builds the checkpoint row created alongside an account.
// The input is signed; it is normalized to magnitude plus direction so
// projection code treats checkpoints like any other row.
func NewOpeningBalance(userID, accountID uuid.UUID, signedAmountInCents int64, occurredAt time.Time) *Transaction {
	direction := DirectionCredit
	magnitude := signedAmountInCents
	if signedAmountInCents < 0 {
		direction = DirectionDebit
		magnitude = -signedAmountInCents
	}

	return &Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		AccountID:     accountID,
		Type:          TxnTypeOpeningBalance,
		Direction:     direction,
		AmountInCents: magnitude,
		OccurredAt:    occurredAt,
	}
}

// SignedAmount returns the balance impact of the row on its primary account.
func (t *Transaction) SignedAmount() int64 {
	return t.Direction.Sign() * t.AmountInCents
}
