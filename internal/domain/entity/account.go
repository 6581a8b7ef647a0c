package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
)

// AccountType identifies the kind of account
type AccountType string

const (
	AccountTypeCash       AccountType = "cash"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeSalary     AccountType = "salary"
	AccountTypeCurrent    AccountType = "current"
	AccountTypeDebitCard  AccountType = "debit_card"
	AccountTypeWallet     AccountType = "wallet"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeLoan       AccountType = "loan"
)

// AccountClass groups account types by how their balance is interpreted
type AccountClass string

const (
	// AccountClassAsset holds money the user owns
	AccountClassAsset AccountClass = "asset"
	// AccountClassLiability tracks money the user owes
	AccountClassLiability AccountClass = "liability"
	// AccountClassLinkedAsset mirrors an asset held elsewhere (a card on a
	// current account)
	AccountClassLinkedAsset AccountClass = "linked_asset"
)

// AccountCapabilities describes which operations an account type supports
type AccountCapabilities struct {
	Class          AccountClass
	AllowsTransfer bool
	AllowsExpense  bool
	AllowsIncome   bool
	HasBalance     bool
}

// accountCatalog is the fixed capability table for every known account type.
var accountCatalog = map[AccountType]AccountCapabilities{
	AccountTypeCash:       {Class: AccountClassAsset, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: true, HasBalance: true},
	AccountTypeSavings:    {Class: AccountClassAsset, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: true, HasBalance: true},
	AccountTypeSalary:     {Class: AccountClassAsset, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: true, HasBalance: true},
	AccountTypeCurrent:    {Class: AccountClassAsset, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: true, HasBalance: true},
	AccountTypeDebitCard:  {Class: AccountClassLinkedAsset, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: true, HasBalance: true},
	AccountTypeWallet:     {Class: AccountClassAsset, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: true, HasBalance: true},
	AccountTypeCreditCard: {Class: AccountClassLiability, AllowsTransfer: true, AllowsExpense: true, AllowsIncome: false, HasBalance: true},
	AccountTypeLoan:       {Class: AccountClassLiability, AllowsTransfer: true, AllowsExpense: false, AllowsIncome: false, HasBalance: true},
}

// Capabilities returns the capability table entry for the type and whether
// the type is known.
func (t AccountType) Capabilities() (AccountCapabilities, bool) {
	c, ok := accountCatalog[t]
	return c, ok
}

// Valid reports whether the account type is in the catalog.
func (t AccountType) Valid() bool {
	_, ok := accountCatalog[t]
	return ok
}

// CreditCardMeta carries the extra fields a credit card account requires.
type CreditCardMeta struct {
	CreditLimitInCents int64
	BillingDay         int
	DueInDays          int
}

// Validate checks the credit card metadata bounds.
func (m *CreditCardMeta) Validate() error {
	if m.CreditLimitInCents <= 0 {
		return fmt.Errorf("%w: credit limit must be positive", errs.ErrInvalidRequest)
	}
	if m.BillingDay < 1 || m.BillingDay > 31 {
		return fmt.Errorf("%w: billing day must be between 1 and 31", errs.ErrInvalidRequest)
	}
	if m.DueInDays <= 0 {
		return fmt.Errorf("%w: due days must be positive", errs.ErrInvalidRequest)
	}
	return nil
}

// Account is a container of money belonging to one user. BalanceInCents is a
// cached projection of the account's transaction history.
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Type           AccountType
	BalanceInCents int64
	CreditCard     *CreditCardMeta
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount builds a validated account. Credit card accounts must carry
// metadata; every other type must not.
func NewAccount(userID uuid.UUID, name string, accountType AccountType, creditCard *CreditCardMeta) (*Account, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: account name is required", errs.ErrInvalidRequest)
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidAccountType, accountType)
	}

	if accountType == AccountTypeCreditCard {
		if creditCard == nil {
			return nil, fmt.Errorf("%w: credit card accounts require card details", errs.ErrInvalidRequest)
		}
		if err := creditCard.Validate(); err != nil {
			return nil, err
		}
	} else if creditCard != nil {
		return nil, fmt.Errorf("%w: card details are only valid for credit card accounts", errs.ErrInvalidRequest)
	}

	return &Account{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		Type:       accountType,
		CreditCard: creditCard,
	}, nil
}

// AllowsTransactionType checks whether the account's type permits a
// transaction of the given kind. Adjustments are always permitted since they
// exist to correct any account.
func (a *Account) AllowsTransactionType(txnType TxnType) error {
	caps, ok := a.Type.Capabilities()
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrInvalidAccountType, a.Type)
	}

	switch txnType {
	case TxnTypeExpense:
		if !caps.AllowsExpense {
			return fmt.Errorf("%w: %s accounts do not allow expenses", errs.ErrAccountCapability, a.Type)
		}
	case TxnTypeIncome:
		if !caps.AllowsIncome {
			return fmt.Errorf("%w: %s accounts do not allow income", errs.ErrAccountCapability, a.Type)
		}
	case TxnTypeTransfer:
		if !caps.AllowsTransfer {
			return fmt.Errorf("%w: %s accounts do not allow transfers", errs.ErrAccountCapability, a.Type)
		}
	case TxnTypeAdjustment, TxnTypeOpeningBalance:
		// always permitted
	default:
		return fmt.Errorf("%w: %s", errs.ErrInvalidTransactionType, txnType)
	}
	return nil
}

// OpeningDirection returns the direction of the initial checkpoint for a
// positive opening amount. A positive starting value on a credit card means
// money already owed, so the checkpoint is a debit.
func (a *Account) OpeningDirection() Direction {
	if a.Type == AccountTypeCreditCard {
		return DirectionDebit
	}
	return DirectionCredit
}
