package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{ErrInvalidAmount, CodeInvalidAmount},
		{ErrNonPositiveAmount, CodeInvalidAmount},
		{ErrNegativeAmount, CodeInvalidAmount},
		{ErrInvalidDirection, CodeInvalidDirection},
		{ErrInvalidTransactionType, CodeInvalidType},
		{ErrSameAccountTransfer, CodeSameAccountTransfer},
		{ErrImmutableField, CodeImmutableField},
		{ErrCategoryTypeMismatch, CodeCategoryMismatch},
		{ErrAccountCapability, CodeAccountCapability},
		{ErrDuplicateTransaction, CodeDuplicateTxn},
		{ErrDuplicateAccount, CodeDuplicateResource},
		{ErrAccountLocked, CodeAccountLocked},
		{ErrTransactionNotFound, CodeTransactionNotFound},
		{ErrAccountNotFound, CodeAccountNotFound},
		{ErrCategoryNotFound, CodeCategoryNotFound},
		{ErrInvalidRequest, CodeInvalidRequest},
		{ErrUnauthorized, CodeUnauthorized},
		{ErrInternalServer, CodeInternalServer},
		{errors.New("anything else"), CodeInternalServer},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, ErrorCode(tt.err), "%v", tt.err)
	}
}

func TestErrorCodeUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: amount", ErrImmutableField)
	assert.Equal(t, CodeImmutableField, ErrorCode(wrapped))
}

func TestDuplicateTransactionError(t *testing.T) {
	userID := uuid.New()
	err := NewDuplicateTransactionError(userID, "req-42")

	assert.ErrorIs(t, err, ErrDuplicateTransaction)
	assert.True(t, IsDuplicateTransactionError(err))
	assert.True(t, IsConflictError(err))
	assert.Contains(t, err.Error(), "req-42")
	assert.Equal(t, CodeDuplicateTxn, ErrorCode(err))

	var dup *DuplicateTransactionError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "req-42", dup.LogFields()["client_txn_id"])
}

func TestMutationError(t *testing.T) {
	userID := uuid.New()
	txnID := uuid.New()
	cause := ErrAccountNotFound

	err := NewMutationError(userID, txnID, "create", "failed to apply balance deltas", cause)

	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, CodeAccountNotFound, ErrorCode(err))

	var mut *MutationError
	assert.True(t, errors.As(err, &mut))
	assert.Equal(t, "create", mut.LogFields()["operation"])
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidationError(ErrImmutableField))
	assert.True(t, IsValidationError(fmt.Errorf("%w: direction", ErrInvalidDirection)))
	assert.False(t, IsValidationError(ErrTransactionNotFound))

	assert.True(t, IsNotFoundError(ErrCategoryNotFound))
	assert.False(t, IsNotFoundError(ErrDuplicateAccount))

	assert.True(t, IsConflictError(ErrAccountLocked))
	assert.True(t, IsAccountLockedError(fmt.Errorf("%w: account x", ErrAccountLocked)))
	assert.False(t, IsConflictError(ErrInvalidAmount))
}
