package dto

import (
	"time"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// CreateTransactionRequest is the request body for recording a transaction.
// Amounts travel as decimal strings, never as floats.
type CreateTransactionRequest struct {
	Type        string    `json:"type" binding:"required"`
	Direction   string    `json:"direction" binding:"required"`
	Amount      string    `json:"amount" binding:"required"`
	AccountID   string    `json:"accountId" binding:"required,uuid"`
	ToAccountID *string   `json:"toAccountId,omitempty" binding:"omitempty,uuid"`
	CategoryID  *string   `json:"categoryId,omitempty" binding:"omitempty,uuid"`
	Note        string    `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurredAt" binding:"required"`
	Timezone    string    `json:"timezone,omitempty"`
	ClientTxnID string    `json:"clientTxnId,omitempty"`
}

// UpdateTransactionRequest is the request body for editing a transaction.
// Monetary fields are accepted by the binding so their mutation can be
// rejected with a clear error instead of silently dropped.
type UpdateTransactionRequest struct {
	Note       *string    `json:"note,omitempty"`
	CategoryID *string    `json:"categoryId,omitempty" binding:"omitempty,uuid"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Timezone   *string    `json:"timezone,omitempty"`

	Amount      *string `json:"amount,omitempty"`
	Direction   *string `json:"direction,omitempty"`
	Type        *string `json:"type,omitempty"`
	AccountID   *string `json:"accountId,omitempty"`
	ToAccountID *string `json:"toAccountId,omitempty"`
}

// BulkUpdateRequest applies one patch to many transactions
type BulkUpdateRequest struct {
	TransactionIDs []string                 `json:"transactionIds" binding:"required,min=1,dive,uuid"`
	Patch          UpdateTransactionRequest `json:"patch"`
}

// BulkUpdateResponse reports how many rows a bulk update touched
type BulkUpdateResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// BulkDeleteRequest soft-deletes many transactions
type BulkDeleteRequest struct {
	TransactionIDs []string `json:"transactionIds" binding:"required,min=1,dive,uuid"`
}

// TransactionResponse is the wire shape of a ledger transaction
type TransactionResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	ToAccountID *string   `json:"toAccountId,omitempty"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Type        string    `json:"type"`
	Direction   string    `json:"direction"`
	Amount      string    `json:"amount"`
	Note        string    `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
	Timezone    string    `json:"timezone,omitempty"`
	ClientTxnID string    `json:"clientTxnId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToTransactionResponse maps a domain transaction to its wire shape
func ToTransactionResponse(t *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		AccountID:   t.AccountID.String(),
		Type:        string(t.Type),
		Direction:   string(t.Direction),
		Amount:      entity.AmountInCentsToString(t.AmountInCents),
		Note:        t.Note,
		OccurredAt:  t.OccurredAt,
		Timezone:    t.Timezone,
		ClientTxnID: t.ClientTxnID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ToAccountID != nil {
		id := t.ToAccountID.String()
		resp.ToAccountID = &id
	}
	if t.CategoryID != nil {
		id := t.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}

// ToTransactionResponses maps a slice of domain transactions
func ToTransactionResponses(txns []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, ToTransactionResponse(t))
	}
	return out
}
