package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/dto"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/middleware"
)

// respondError maps a domain error to an HTTP status and the standard body.
// Unknown errors become an opaque 500.
func respondError(c *gin.Context, logger core.Logger, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errs.IsValidationError(err):
		status = http.StatusBadRequest
	case errs.IsNotFoundError(err):
		status = http.StatusNotFound
	case errs.IsConflictError(err):
		status = http.StatusConflict
	default:
		logger.Error("Unhandled error in request", map[string]any{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		message = "Internal server error"
	}

	c.JSON(status, dto.ErrorResponse{Code: errs.ErrorCode(err), Message: message})
}

// respondBindError reports a malformed request body or query string
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    errs.CodeInvalidRequest,
		Message: "Invalid request: " + err.Error(),
	})
}

// requireUserID fetches the caller identity set by the identity middleware.
// A miss means the route was registered outside the authenticated group.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Code:    errs.CodeUnauthorized,
			Message: "Missing caller identity",
		})
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a uuid path parameter or writes a 400
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    errs.CodeInvalidRequest,
			Message: "Invalid " + name + " parameter",
		})
		return uuid.Nil, false
	}
	return id, true
}
