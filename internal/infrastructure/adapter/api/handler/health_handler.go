package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/database"
)

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	manager *database.Manager
}

// NewHealthHandler creates a health handler
func NewHealthHandler(manager *database.Manager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.manager.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
