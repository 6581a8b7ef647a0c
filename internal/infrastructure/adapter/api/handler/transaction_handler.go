package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
	"github.com/ledgerkit/ledger-api/internal/domain/usecase/transaction"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/dto"
)

// TransactionHandler exposes the ledger mutation and query endpoints
type TransactionHandler struct {
	service      *transaction.Service
	logger       core.Logger
	defaultLimit int
	maxBulk      int
}

// NewTransactionHandler creates a transaction handler
func NewTransactionHandler(service *transaction.Service, logger core.Logger, defaultLimit, maxBulk int) *TransactionHandler {
	return &TransactionHandler{
		service:      service,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxBulk:      maxBulk,
	}
}

// Create handles POST /api/v1/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := transaction.CreateInput{
		Type:        entity.TxnType(req.Type),
		Direction:   entity.Direction(req.Direction),
		Amount:      req.Amount,
		Note:        req.Note,
		OccurredAt:  req.OccurredAt,
		Timezone:    req.Timezone,
		ClientTxnID: req.ClientTxnID,
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		respondBindError(c, err)
		return
	}
	input.AccountID = accountID

	if req.ToAccountID != nil {
		id, err := uuid.Parse(*req.ToAccountID)
		if err != nil {
			respondBindError(c, err)
			return
		}
		input.ToAccountID = &id
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondBindError(c, err)
			return
		}
		input.CategoryID = &id
	}

	txn, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// Get handles GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.service.GetByID(c.Request.Context(), userID, txnID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	txns, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTransactionResponses(txns)})
}

// Update handles PATCH /api/v1/transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch, ok := h.toPatch(c, req)
	if !ok {
		return
	}

	txn, err := h.service.Update(c.Request.Context(), userID, txnID, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// Delete handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	txnID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, txnID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkUpdate handles POST /api/v1/transactions/bulk-update
func (h *TransactionHandler) BulkUpdate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txnIDs, ok := h.parseBulkIDs(c, req.TransactionIDs)
	if !ok {
		return
	}
	patch, ok := h.toPatch(c, req.Patch)
	if !ok {
		return
	}

	modified, err := h.service.BulkUpdate(c.Request.Context(), userID, txnIDs, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BulkUpdateResponse{ModifiedCount: modified})
}

// BulkDelete handles POST /api/v1/transactions/bulk-delete
func (h *TransactionHandler) BulkDelete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txnIDs, ok := h.parseBulkIDs(c, req.TransactionIDs)
	if !ok {
		return
	}

	if err := h.service.BulkDelete(c.Request.Context(), userID, txnIDs); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TransactionHandler) parseFilter(c *gin.Context) (persistence.TransactionFilter, bool) {
	filter := persistence.TransactionFilter{Limit: h.defaultLimit}

	if raw := c.Query("accountId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBindError(c, err)
			return filter, false
		}
		filter.AccountID = &id
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBindError(c, err)
			return filter, false
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("type"); raw != "" {
		txnType := entity.TxnType(raw)
		if !txnType.Valid() {
			respondError(c, h.logger, errs.ErrInvalidTransactionType)
			return filter, false
		}
		filter.Type = txnType
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBindError(c, err)
			return filter, false
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBindError(c, err)
			return filter, false
		}
		filter.To = &t
	}

	var pagination struct {
		Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
		Offset int `form:"offset" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindQuery(&pagination); err != nil {
		respondBindError(c, err)
		return filter, false
	}
	if pagination.Limit > 0 {
		filter.Limit = pagination.Limit
	}
	filter.Offset = pagination.Offset

	return filter, true
}

func (h *TransactionHandler) toPatch(c *gin.Context, req dto.UpdateTransactionRequest) (transaction.Patch, bool) {
	patch := transaction.Patch{
		Note:       req.Note,
		OccurredAt: req.OccurredAt,
		Timezone:   req.Timezone,
		Amount:     req.Amount,
	}

	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondBindError(c, err)
			return patch, false
		}
		patch.CategoryID = &id
	}
	if req.Direction != nil {
		d := entity.Direction(*req.Direction)
		patch.Direction = &d
	}
	if req.Type != nil {
		t := entity.TxnType(*req.Type)
		patch.Type = &t
	}
	if req.AccountID != nil {
		id, err := uuid.Parse(*req.AccountID)
		if err != nil {
			respondBindError(c, err)
			return patch, false
		}
		patch.AccountID = &id
	}
	if req.ToAccountID != nil {
		id, err := uuid.Parse(*req.ToAccountID)
		if err != nil {
			respondBindError(c, err)
			return patch, false
		}
		patch.ToAccountID = &id
	}

	return patch, true
}

func (h *TransactionHandler) parseBulkIDs(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	if len(raw) > h.maxBulk {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.CodeInvalidRequest,
			Message: "Too many transactions in one request",
		})
		return nil, false
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			respondBindError(c, err)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
