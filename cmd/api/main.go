package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountUseCase "github.com/ledgerkit/ledger-api/internal/domain/usecase/account"
	categoryUseCase "github.com/ledgerkit/ledger-api/internal/domain/usecase/category"
	transactionUseCase "github.com/ledgerkit/ledger-api/internal/domain/usecase/transaction"

	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/handler"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/api/routes"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/database"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/logger"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/repository"
	timeProvider "github.com/ledgerkit/ledger-api/internal/infrastructure/adapter/time"
	"github.com/ledgerkit/ledger-api/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == "production")
	appLogger.SetLevel(logLevelFromString(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Database.LogLevel,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}
	if err := dbConfig.Validate(); err != nil {
		appLogger.Error("Invalid database configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	tp := timeProvider.NewRealTimeProvider()

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.Migrate(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	uow := dbManager.CreateUnitOfWork()
	lockRepo := repository.NewAccountLockRepository(dbManager.DB(), tp, appLogger)

	shifter := transactionUseCase.NewCheckpointShifter(appLogger)
	lockTTL := core.Duration(cfg.Ledger.LockTimeoutMs) * core.Millisecond

	transactionService := transactionUseCase.NewService(uow, lockRepo, shifter, appLogger, tp, lockTTL)
	accountService := accountUseCase.NewService(uow, appLogger, tp)
	categoryService := categoryUseCase.NewService(uow, appLogger)

	transactionHandler := handler.NewTransactionHandler(
		transactionService,
		appLogger,
		cfg.Ledger.DefaultListLimit,
		cfg.Ledger.MaxBulkTransactions,
	)
	accountHandler := handler.NewAccountHandler(accountService, appLogger)
	categoryHandler := handler.NewCategoryHandler(categoryService, appLogger)
	healthHandler := handler.NewHealthHandler(dbManager)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, transactionHandler, accountHandler, categoryHandler, healthHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go runLockCleanup(cleanupCtx, lockRepo, appLogger, cfg.Ledger.LockCleanupSeconds)

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)
	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// runLockCleanup periodically removes expired account locks so crashed
// mutations cannot freeze an account past the lock TTL.
func runLockCleanup(ctx context.Context, locks *repository.AccountLockRepository, appLogger core.Logger, intervalSeconds int) {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := database.RetryOnTransientError(ctx, database.DefaultRetryConfig(), func() error {
				removed, err := locks.CleanupExpiredLocks(ctx)
				if err != nil {
					return err
				}
				if removed > 0 {
					appLogger.Info("Cleaned up expired account locks", map[string]any{
						"removed": removed,
					})
				}
				return nil
			}, appLogger)
			if err != nil && ctx.Err() == nil {
				appLogger.Error("Lock cleanup failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

func logLevelFromString(level string) core.LogLevel {
	switch level {
	case "debug":
		return core.LogLevelDebug
	case "warn":
		return core.LogLevelWarn
	case "error":
		return core.LogLevelError
	default:
		return core.LogLevelInfo
	}
}
