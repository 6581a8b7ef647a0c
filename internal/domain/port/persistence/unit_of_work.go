package persistence

import "context"

// UnitOfWork coordinates atomic multi-repository operations. Begin returns a
// context carrying the transaction; the repository getters return instances
// bound to it. Repositories obtained outside Begin operate autonomously.
type UnitOfWork interface {
	// Begin starts a transaction and returns a context carrying it
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction carried by the context
	Commit(ctx context.Context) error

	// Rollback aborts the transaction carried by the context
	Rollback(ctx context.Context) error

	// GetTransactionRepository returns a transaction repository bound to the
	// context's transaction, if any
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetAccountRepository returns an account repository bound to the
	// context's transaction, if any
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetCategoryRepository returns a category repository bound to the
	// context's transaction, if any
	GetCategoryRepository(ctx context.Context) CategoryRepository
}
