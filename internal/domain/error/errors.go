package error

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest      = 4000
	CodeInvalidAmount       = 4001
	CodeInvalidDirection    = 4002
	CodeInvalidType         = 4003
	CodeSameAccountTransfer = 4004
	CodeImmutableField      = 4005
	CodeCategoryMismatch    = 4006
	CodeAccountCapability   = 4007
	CodeConstraintViolation = 4008
	CodeDuplicateResource   = 4090
	CodeDuplicateTxn        = 4091
	CodeAccountLocked       = 4230
	CodeUnauthorized        = 4010
	CodeTransactionNotFound = 4040
	CodeAccountNotFound     = 4041
	CodeCategoryNotFound    = 4042

	// 5xxx - Server errors
	CodeInternalServer = 5000
)

// Base error types
var (
	// ErrInvalidAmount is returned when an amount string cannot be parsed
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNonPositiveAmount is returned when a transaction amount is zero or negative
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")

	// ErrNegativeAmount is returned when an amount string carries a minus sign
	// where only non-negative values are allowed
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidDirection is returned when the direction is not debit or credit
	ErrInvalidDirection = errors.New("invalid transaction direction")

	// ErrInvalidTransactionType is returned when the transaction type is unknown
	// or may not be created through the API (opening_balance is system-managed)
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrSameAccountTransfer is returned when a transfer names the same account
	// as both source and destination
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")

	// ErrMissingTransferAccount is returned when a transfer has no destination
	ErrMissingTransferAccount = errors.New("transfer requires a destination account")

	// ErrImmutableField is returned when a patch attempts to change monetary
	// semantics or another immutable field
	ErrImmutableField = errors.New("field is immutable after creation")

	// ErrCategoryRequired is returned when an expense or income transaction
	// carries no category
	ErrCategoryRequired = errors.New("category is required for this transaction type")

	// ErrCategoryTypeMismatch is returned when a category's type does not match
	// the transaction's type
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")

	// ErrAccountCapability is returned when an account type does not allow the
	// requested transaction type
	ErrAccountCapability = errors.New("account type does not allow this operation")

	// ErrInvalidAccountType is returned when the account type is not in the catalog
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrInvalidCategoryType is returned when the category type is unknown
	ErrInvalidCategoryType = errors.New("invalid category type")

	// ErrTransactionNotFound is returned when the requested transaction doesn't
	// exist or is soft-deleted for this user
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAccountNotFound is returned when the referenced account doesn't exist
	// or is soft-deleted for this user
	ErrAccountNotFound = errors.New("account not found")

	// ErrCategoryNotFound is returned when the referenced category doesn't exist
	// or is soft-deleted for this user
	ErrCategoryNotFound = errors.New("category not found")

	// ErrDuplicateTransaction is returned when a transaction with the same
	// client transaction ID already exists for the user
	ErrDuplicateTransaction = errors.New("transaction with this client ID already exists")

	// ErrDuplicateAccount is returned when an active account with the same name
	// and type already exists for the user
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrDuplicateCategory is returned when an active category with the same
	// name and type already exists for the user
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrAccountLocked is returned when an account is locked by another mutation
	ErrAccountLocked = errors.New("account is locked by another operation")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized is returned when the caller identity is missing or malformed
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrNonPositiveAmount),
		errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidDirection):
		return CodeInvalidDirection
	case errors.Is(err, ErrInvalidTransactionType),
		errors.Is(err, ErrInvalidAccountType),
		errors.Is(err, ErrInvalidCategoryType):
		return CodeInvalidType
	case errors.Is(err, ErrSameAccountTransfer),
		errors.Is(err, ErrMissingTransferAccount):
		return CodeSameAccountTransfer
	case errors.Is(err, ErrImmutableField):
		return CodeImmutableField
	case errors.Is(err, ErrCategoryTypeMismatch),
		errors.Is(err, ErrCategoryRequired):
		return CodeCategoryMismatch
	case errors.Is(err, ErrAccountCapability):
		return CodeAccountCapability
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTxn
	case errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrDuplicateCategory):
		return CodeDuplicateResource
	case errors.Is(err, ErrAccountLocked):
		return CodeAccountLocked
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrCategoryNotFound):
		return CodeCategoryNotFound
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternalServer
	}
}

// MutationError represents an error raised while applying a ledger mutation
type MutationError struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Operation     string
	Reason        string
	Err           error
}

// Error implements the error interface for MutationError
func (e *MutationError) Error() string {
	return fmt.Sprintf("ledger %s failed for transaction %s (user: %s): %s - %v",
		e.Operation, e.TransactionID, e.UserID, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *MutationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *MutationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "mutation_error",
		"user_id":        e.UserID.String(),
		"transaction_id": e.TransactionID.String(),
		"operation":      e.Operation,
		"reason":         e.Reason,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewMutationError creates a detailed mutation error
func NewMutationError(userID, transactionID uuid.UUID, operation, reason string, err error) error {
	return &MutationError{
		UserID:        userID,
		TransactionID: transactionID,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}

// DuplicateTransactionError provides detail about idempotency-key collisions
type DuplicateTransactionError struct {
	UserID      uuid.UUID
	ClientTxnID string
}

// Error implements the error interface
func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("duplicate transaction detected: clientTxnId=%s for user %s",
		e.ClientTxnID, e.UserID)
}

// Is checks if the target error is an ErrDuplicateTransaction
func (e *DuplicateTransactionError) Is(target error) bool {
	return target == ErrDuplicateTransaction
}

// LogFields returns a map of fields for structured logging
func (e *DuplicateTransactionError) LogFields() map[string]any {
	return map[string]any{
		"error_type":    "duplicate_transaction",
		"user_id":       e.UserID.String(),
		"client_txn_id": e.ClientTxnID,
		"error_code":    CodeDuplicateTxn,
	}
}

// NewDuplicateTransactionError creates a new detailed duplicate transaction error
func NewDuplicateTransactionError(userID uuid.UUID, clientTxnID string) error {
	return &DuplicateTransactionError{
		UserID:      userID,
		ClientTxnID: clientTxnID,
	}
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

// IsValidationError checks if the error is client-caused and non-retryable
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrInvalidAccountType) ||
		errors.Is(err, ErrInvalidCategoryType) ||
		errors.Is(err, ErrSameAccountTransfer) ||
		errors.Is(err, ErrMissingTransferAccount) ||
		errors.Is(err, ErrImmutableField) ||
		errors.Is(err, ErrCategoryRequired) ||
		errors.Is(err, ErrCategoryTypeMismatch) ||
		errors.Is(err, ErrAccountCapability) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsConflictError checks if the error indicates a duplicate or a lock collision
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrDuplicateAccount) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrAccountLocked)
}

// IsDuplicateTransactionError checks if the error is an idempotency-key collision
func IsDuplicateTransactionError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}

// IsAccountLockedError checks if the error is related to a locked account
func IsAccountLockedError(err error) bool {
	return errors.Is(err, ErrAccountLocked)
}
