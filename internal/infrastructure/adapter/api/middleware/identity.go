package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/dto"
)

// userIDKey is where Identity stores the resolved user id in the gin context
const userIDKey = "userID"

// Identity resolves the caller from the X-User-ID header. The gateway in
// front of this service authenticates requests; here the id only scopes
// data access.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    errs.ErrorCode(errs.ErrUnauthorized),
				Message: "Missing X-User-ID header",
			})
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    errs.ErrorCode(errs.ErrUnauthorized),
				Message: "Invalid X-User-ID header",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFrom returns the user id stored by Identity
func UserIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok
}
