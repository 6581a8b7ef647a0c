package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/usecase/category"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/dto"
)

// CategoryHandler exposes the category endpoints
type CategoryHandler struct {
	service *category.Service
	logger  core.Logger
}

// NewCategoryHandler creates a category handler
func NewCategoryHandler(service *category.Service, logger core.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// Create handles POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cat, err := h.service.Create(c.Request.Context(), userID, req.Name, entity.CategoryType(req.Type))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryResponse(cat))
}

// Get handles GET /api/v1/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cat, err := h.service.Get(c.Request.Context(), userID, categoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryResponse(cat))
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	categories, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": dto.ToCategoryResponses(categories)})
}

// Update handles PATCH /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cat, err := h.service.Rename(c.Request.Context(), userID, categoryID, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryResponse(cat))
}

// Delete handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Archive(c.Request.Context(), userID, categoryID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
