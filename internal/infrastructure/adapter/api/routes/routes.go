package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/handler"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/middleware"
)

// SetupMiddlewares applies the global middleware chain
func SetupMiddlewares(router *gin.Engine, logger core.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}

// SetupRoutes registers all API routes
func SetupRoutes(
	router *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	accountHandler *handler.AccountHandler,
	categoryHandler *handler.CategoryHandler,
	healthHandler *handler.HealthHandler,
) {
	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity())
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.Get)
			accounts.PATCH("/:id", accountHandler.Update)
			accounts.DELETE("/:id", accountHandler.Delete)
		}

		categories := v1.Group("/categories")
		{
			categories.POST("", categoryHandler.Create)
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.PATCH("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.POST("/bulk-update", transactionHandler.BulkUpdate)
			transactions.POST("/bulk-delete", transactionHandler.BulkDelete)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.PATCH("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}
	}
}
