package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/dto"
)

// ErrorHandler recovers from panics in downstream handlers and turns them
// into a generic 500 so no internal detail leaks to the client.
func ErrorHandler(logger core.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered in request handler", map[string]any{
					"panic":  r,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    errs.ErrorCode(errs.ErrInternalServer),
					Message: "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
