package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/usecase/account"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/dto"
)

// AccountHandler exposes the account lifecycle endpoints
type AccountHandler struct {
	service *account.Service
	logger  core.Logger
}

// NewAccountHandler creates an account handler
func NewAccountHandler(service *account.Service, logger core.Logger) *AccountHandler {
	return &AccountHandler{service: service, logger: logger}
}

// Create handles POST /api/v1/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := account.CreateInput{
		Name:           req.Name,
		Type:           entity.AccountType(req.Type),
		InitialBalance: req.InitialBalance,
	}

	if req.CreditCard != nil {
		meta, err := toCreditCardMeta(req.CreditCard)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		input.CreditCard = meta
	}

	acc, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(acc))
}

// Get handles GET /api/v1/accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	acc, err := h.service.Get(c.Request.Context(), userID, accountID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	accounts, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToAccountResponses(accounts)})
}

// Update handles PATCH /api/v1/accounts/:id
func (h *AccountHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := account.Patch{Name: req.Name}
	if req.CreditCard != nil {
		meta, err := toCreditCardMeta(req.CreditCard)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		patch.CreditCard = meta
	}

	acc, err := h.service.Update(c.Request.Context(), userID, accountID, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// Delete handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	accountID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Archive(c.Request.Context(), userID, accountID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toCreditCardMeta(req *dto.CreditCardRequest) (*entity.CreditCardMeta, error) {
	limitInCents, err := entity.ValidateAndConvertAmount(req.CreditLimit)
	if err != nil {
		return nil, err
	}
	return &entity.CreditCardMeta{
		CreditLimitInCents: limitInCents,
		BillingDay:         req.BillingDay,
		DueInDays:          req.DueInDays,
	}, nil
}
