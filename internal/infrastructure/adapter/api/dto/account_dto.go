package dto

import (
	"time"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// CreditCardRequest carries credit card metadata on account requests
type CreditCardRequest struct {
	CreditLimit string `json:"creditLimit" binding:"required"`
	BillingDay  int    `json:"billingDay" binding:"required,min=1,max=31"`
	DueInDays   int    `json:"dueInDays" binding:"required,min=1"`
}

// CreateAccountRequest is the request body for opening an account
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	Type           string             `json:"type" binding:"required"`
	InitialBalance string             `json:"initialBalance,omitempty"`
	CreditCard     *CreditCardRequest `json:"creditCard,omitempty"`
}

// UpdateAccountRequest is the request body for editing account metadata
type UpdateAccountRequest struct {
	Name       *string            `json:"name,omitempty"`
	CreditCard *CreditCardRequest `json:"creditCard,omitempty"`
}

// CreditCardResponse is the wire shape of credit card metadata
type CreditCardResponse struct {
	CreditLimit string `json:"creditLimit"`
	BillingDay  int    `json:"billingDay"`
	DueInDays   int    `json:"dueInDays"`
}

// AccountResponse is the wire shape of an account
type AccountResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Balance    string              `json:"balance"`
	CreditCard *CreditCardResponse `json:"creditCard,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// ToAccountResponse maps a domain account to its wire shape
func ToAccountResponse(a *entity.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   entity.AmountInCentsToString(a.BalanceInCents),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.CreditCard != nil {
		resp.CreditCard = &CreditCardResponse{
			CreditLimit: entity.AmountInCentsToString(a.CreditCard.CreditLimitInCents),
			BillingDay:  a.CreditCard.BillingDay,
			DueInDays:   a.CreditCard.DueInDays,
		}
	}
	return resp
}

// ToAccountResponses maps a slice of domain accounts
func ToAccountResponses(accounts []*entity.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountResponse(a))
	}
	return out
}
