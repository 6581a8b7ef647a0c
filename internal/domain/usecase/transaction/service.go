// Package transaction coordinates ledger mutations. Every create, update
// and delete runs inside one unit of work behind per-account locks: the
// opening-balance shifter runs first, then deltas are computed, aggregated
// and applied to cached balances, and the record write commits last.
package transaction

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/ledger"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

const (
	defaultLockTTL = 30 * core.Second
	lockAttempts   = 3
	lockRetryDelay = 50 * core.Millisecond
)

// Service is the ledger transaction coordinator.
type Service struct {
	uow          persistence.UnitOfWork
	locks        persistence.AccountLockRepository
	shifter      *CheckpointShifter
	logger       core.Logger
	timeProvider core.TimeProvider
	lockTTL      core.Duration
}

// NewService creates a transaction coordinator. A non-positive lockTTL
// falls back to the default.
func NewService(
	uow persistence.UnitOfWork,
	locks persistence.AccountLockRepository,
	shifter *CheckpointShifter,
	logger core.Logger,
	timeProvider core.TimeProvider,
	lockTTL core.Duration,
) *Service {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Service{
		uow:          uow,
		locks:        locks,
		shifter:      shifter,
		logger:       logger,
		timeProvider: timeProvider,
		lockTTL:      lockTTL,
	}
}

// Create records a new ledger entry and applies its balance impact.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*entity.Transaction, error) {
	amountInCents, err := validateCreateInput(input)
	if err != nil {
		return nil, err
	}

	// gate before taking locks so retried requests don't contend
	if existing, err := s.findExistingByClientTxnID(ctx, s.uow.GetTransactionRepository(ctx), userID, input.ClientTxnID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	involved := []uuid.UUID{input.AccountID}
	if input.ToAccountID != nil {
		involved = append(involved, *input.ToAccountID)
	}

	release, err := s.lockAccounts(ctx, userID, involved)
	if err != nil {
		return nil, err
	}
	defer release()

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	committed := false
	defer s.rollbackUnlessCommitted(txCtx, &committed)

	txns := s.uow.GetTransactionRepository(txCtx)
	accounts := s.uow.GetAccountRepository(txCtx)
	categories := s.uow.GetCategoryRepository(txCtx)

	// the gate again, now serialized behind the account locks
	if existing, err := s.findExistingByClientTxnID(txCtx, txns, userID, input.ClientTxnID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	account, err := accounts.GetByID(txCtx, userID, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := account.AllowsTransactionType(input.Type); err != nil {
		return nil, err
	}

	if input.Type == entity.TxnTypeTransfer {
		destination, err := accounts.GetByID(txCtx, userID, *input.ToAccountID)
		if err != nil {
			return nil, err
		}
		if err := destination.AllowsTransactionType(entity.TxnTypeTransfer); err != nil {
			return nil, err
		}
	}

	if err := validateCategory(txCtx, categories, userID, input.CategoryID, input.Type); err != nil {
		return nil, err
	}

	txn, err := entity.NewTransaction(userID, input.AccountID, input.Type, input.Direction, amountInCents, input.OccurredAt)
	if err != nil {
		return nil, err
	}
	txn.ToAccountID = input.ToAccountID
	txn.CategoryID = input.CategoryID
	txn.Note = input.Note
	txn.Timezone = input.Timezone
	txn.ClientTxnID = input.ClientTxnID

	snap := ledger.SnapshotOf(txn)

	shifts, err := s.shifter.ShiftIfNeeded(txCtx, txns, userID, snap, false)
	if err != nil {
		return nil, err
	}

	deltas := ledger.ComputeDeltas(ledger.OperationCreate, ledger.Snapshot{}, snap)
	if err := s.applyDeltas(txCtx, accounts, userID, ledger.Aggregate(append(deltas, shifts...))); err != nil {
		return nil, errs.NewMutationError(userID, txn.ID, "create", "failed to apply balance deltas", err)
	}

	if err := txns.Create(txCtx, txn); err != nil {
		if errs.IsDuplicateTransactionError(err) {
			return nil, errs.NewDuplicateTransactionError(userID, input.ClientTxnID)
		}
		return nil, errs.NewMutationError(userID, txn.ID, "create", "failed to persist transaction", err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, errs.NewMutationError(userID, txn.ID, "create", "commit failed", err)
	}
	committed = true

	s.logger.Info("Transaction recorded", map[string]any{
		"user_id":        userID.String(),
		"transaction_id": txn.ID.String(),
		"account_id":     txn.AccountID.String(),
		"type":           string(txn.Type),
		"direction":      string(txn.Direction),
		"amount_cents":   txn.AmountInCents,
	})
	return txn, nil
}

// Update edits the non-monetary fields of one transaction. Monetary edits
// are rejected; they must be modeled as delete plus recreate.
func (s *Service) Update(ctx context.Context, userID, txnID uuid.UUID, patch Patch) (*entity.Transaction, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	// read outside the unit of work only to learn which accounts to lock
	peek, err := s.uow.GetTransactionRepository(ctx).GetByID(ctx, userID, txnID)
	if err != nil {
		return nil, err
	}
	if peek.IsCheckpoint() {
		return nil, fmt.Errorf("%w: opening balance entries are system-managed", errs.ErrImmutableField)
	}

	release, err := s.lockAccounts(ctx, userID, peek.InvolvedAccounts())
	if err != nil {
		return nil, err
	}
	defer release()

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	committed := false
	defer s.rollbackUnlessCommitted(txCtx, &committed)

	txns := s.uow.GetTransactionRepository(txCtx)
	accounts := s.uow.GetAccountRepository(txCtx)
	categories := s.uow.GetCategoryRepository(txCtx)

	txn, err := txns.GetByID(txCtx, userID, txnID)
	if err != nil {
		return nil, err
	}

	deltas, err := s.applyPatch(txCtx, txns, categories, userID, txn, patch)
	if err != nil {
		return nil, err
	}

	if err := s.applyDeltas(txCtx, accounts, userID, deltas); err != nil {
		return nil, errs.NewMutationError(userID, txnID, "update", "failed to apply balance deltas", err)
	}

	if err := txns.Update(txCtx, txn); err != nil {
		return nil, errs.NewMutationError(userID, txnID, "update", "failed to persist changes", err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, errs.NewMutationError(userID, txnID, "update", "commit failed", err)
	}
	committed = true

	s.logger.Info("Transaction updated", map[string]any{
		"user_id":        userID.String(),
		"transaction_id": txnID.String(),
	})
	return txn, nil
}

// Delete soft-deletes one transaction and reverses its balance impact.
func (s *Service) Delete(ctx context.Context, userID, txnID uuid.UUID) error {
	peek, err := s.uow.GetTransactionRepository(ctx).GetByID(ctx, userID, txnID)
	if err != nil {
		return err
	}
	if peek.IsCheckpoint() {
		return fmt.Errorf("%w: opening balance entries are system-managed", errs.ErrImmutableField)
	}

	release, err := s.lockAccounts(ctx, userID, peek.InvolvedAccounts())
	if err != nil {
		return err
	}
	defer release()

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	committed := false
	defer s.rollbackUnlessCommitted(txCtx, &committed)

	txns := s.uow.GetTransactionRepository(txCtx)
	accounts := s.uow.GetAccountRepository(txCtx)

	txn, err := txns.GetByID(txCtx, userID, txnID)
	if err != nil {
		return err
	}

	before := ledger.SnapshotOf(txn)

	shifts, err := s.shifter.ShiftIfNeeded(txCtx, txns, userID, before, true)
	if err != nil {
		return err
	}

	deltas := ledger.ComputeDeltas(ledger.OperationDelete, before, ledger.Snapshot{})
	if err := s.applyDeltas(txCtx, accounts, userID, ledger.Aggregate(append(deltas, shifts...))); err != nil {
		return errs.NewMutationError(userID, txnID, "delete", "failed to apply balance deltas", err)
	}

	if err := txns.SoftDelete(txCtx, userID, txnID); err != nil {
		return errs.NewMutationError(userID, txnID, "delete", "failed to soft-delete transaction", err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return errs.NewMutationError(userID, txnID, "delete", "commit failed", err)
	}
	committed = true

	s.logger.Info("Transaction deleted", map[string]any{
		"user_id":        userID.String(),
		"transaction_id": txnID.String(),
	})
	return nil
}

// BulkUpdate applies one patch to many transactions atomically and returns
// how many rows were modified.
func (s *Service) BulkUpdate(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID, patch Patch) (int64, error) {
	if err := patch.validate(); err != nil {
		return 0, err
	}
	if len(txnIDs) == 0 {
		return 0, nil
	}

	involved, err := s.peekInvolvedAccounts(ctx, userID, txnIDs)
	if err != nil {
		return 0, err
	}

	release, err := s.lockAccounts(ctx, userID, involved)
	if err != nil {
		return 0, err
	}
	defer release()

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	committed := false
	defer s.rollbackUnlessCommitted(txCtx, &committed)

	txns := s.uow.GetTransactionRepository(txCtx)
	accounts := s.uow.GetAccountRepository(txCtx)
	categories := s.uow.GetCategoryRepository(txCtx)

	var allDeltas []ledger.Delta
	var modified int64

	for _, id := range dedupe(txnIDs) {
		txn, err := txns.GetByID(txCtx, userID, id)
		if err != nil {
			return 0, err
		}

		deltas, err := s.applyPatch(txCtx, txns, categories, userID, txn, patch)
		if err != nil {
			return 0, err
		}
		allDeltas = append(allDeltas, deltas...)

		if err := txns.Update(txCtx, txn); err != nil {
			return 0, errs.NewMutationError(userID, id, "bulk_update", "failed to persist changes", err)
		}
		modified++
	}

	if err := s.applyDeltas(txCtx, accounts, userID, ledger.Aggregate(allDeltas)); err != nil {
		return 0, errs.NewMutationError(userID, uuid.Nil, "bulk_update", "failed to apply balance deltas", err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return 0, errs.NewMutationError(userID, uuid.Nil, "bulk_update", "commit failed", err)
	}
	committed = true

	s.logger.Info("Transactions bulk-updated", map[string]any{
		"user_id":        userID.String(),
		"modified_count": modified,
	})
	return modified, nil
}

// BulkDelete soft-deletes many transactions atomically and reverses their
// combined balance impact.
func (s *Service) BulkDelete(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID) error {
	if len(txnIDs) == 0 {
		return nil
	}

	involved, err := s.peekInvolvedAccounts(ctx, userID, txnIDs)
	if err != nil {
		return err
	}

	release, err := s.lockAccounts(ctx, userID, involved)
	if err != nil {
		return err
	}
	defer release()

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}
	committed := false
	defer s.rollbackUnlessCommitted(txCtx, &committed)

	txns := s.uow.GetTransactionRepository(txCtx)
	accounts := s.uow.GetAccountRepository(txCtx)

	ids := dedupe(txnIDs)
	var allDeltas []ledger.Delta

	for _, id := range ids {
		txn, err := txns.GetByID(txCtx, userID, id)
		if err != nil {
			return err
		}

		before := ledger.SnapshotOf(txn)

		shifts, err := s.shifter.ShiftIfNeeded(txCtx, txns, userID, before, true)
		if err != nil {
			return err
		}

		allDeltas = append(allDeltas, ledger.ComputeDeltas(ledger.OperationDelete, before, ledger.Snapshot{})...)
		allDeltas = append(allDeltas, shifts...)
	}

	if err := s.applyDeltas(txCtx, accounts, userID, ledger.Aggregate(allDeltas)); err != nil {
		return errs.NewMutationError(userID, uuid.Nil, "bulk_delete", "failed to apply balance deltas", err)
	}

	affected, err := txns.SoftDeleteMany(txCtx, userID, ids)
	if err != nil {
		return errs.NewMutationError(userID, uuid.Nil, "bulk_delete", "failed to soft-delete transactions", err)
	}
	if affected != int64(len(ids)) {
		return fmt.Errorf("%w: expected %d rows, deleted %d", errs.ErrTransactionNotFound, len(ids), affected)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return errs.NewMutationError(userID, uuid.Nil, "bulk_delete", "commit failed", err)
	}
	committed = true

	s.logger.Info("Transactions bulk-deleted", map[string]any{
		"user_id":       userID.String(),
		"deleted_count": affected,
	})
	return nil
}

// GetByID retrieves one live transaction.
func (s *Service) GetByID(ctx context.Context, userID, txnID uuid.UUID) (*entity.Transaction, error) {
	return s.uow.GetTransactionRepository(ctx).GetByID(ctx, userID, txnID)
}

// List retrieves live transactions matching the filter, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	return s.uow.GetTransactionRepository(ctx).List(ctx, userID, filter)
}

// applyPatch mutates txn in place per the patch and returns the aggregated
// balance deltas the edit causes. Date moves can cross the checkpoint in
// either direction, so the shifter runs once for the row leaving its old
// date and once for it arriving at the new one.
func (s *Service) applyPatch(txCtx context.Context, txns persistence.TransactionRepository, categories persistence.CategoryRepository, userID uuid.UUID, txn *entity.Transaction, patch Patch) ([]ledger.Delta, error) {
	if txn.IsCheckpoint() {
		return nil, fmt.Errorf("%w: opening balance entries are system-managed", errs.ErrImmutableField)
	}

	before := ledger.SnapshotOf(txn)

	if patch.CategoryID != nil {
		if err := validateCategory(txCtx, categories, userID, patch.CategoryID, txn.Type); err != nil {
			return nil, err
		}
		txn.CategoryID = patch.CategoryID
	}
	if patch.Note != nil {
		txn.Note = *patch.Note
	}
	if patch.Timezone != nil {
		txn.Timezone = *patch.Timezone
	}

	var shifts []ledger.Delta
	if patch.OccurredAt != nil && !patch.OccurredAt.Equal(txn.OccurredAt) {
		unabsorb, err := s.shifter.ShiftIfNeeded(txCtx, txns, userID, before, true)
		if err != nil {
			return nil, err
		}
		txn.OccurredAt = *patch.OccurredAt

		absorb, err := s.shifter.ShiftIfNeeded(txCtx, txns, userID, ledger.SnapshotOf(txn), false)
		if err != nil {
			return nil, err
		}
		shifts = append(unabsorb, absorb...)
	}

	deltas := ledger.ComputeDeltas(ledger.OperationUpdate, before, ledger.SnapshotOf(txn))
	return ledger.Aggregate(append(deltas, shifts...)), nil
}

// peekInvolvedAccounts reads the targeted rows outside any unit of work to
// learn which accounts a bulk mutation must lock.
func (s *Service) peekInvolvedAccounts(ctx context.Context, userID uuid.UUID, txnIDs []uuid.UUID) ([]uuid.UUID, error) {
	txns := s.uow.GetTransactionRepository(ctx)
	var involved []uuid.UUID
	for _, id := range dedupe(txnIDs) {
		txn, err := txns.GetByID(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if txn.IsCheckpoint() {
			return nil, fmt.Errorf("%w: opening balance entries are system-managed", errs.ErrImmutableField)
		}
		involved = append(involved, txn.InvolvedAccounts()...)
	}
	return involved, nil
}

// applyDeltas increments each target account's cached balance. Increments
// are relative so concurrent deltas on other accounts never conflict.
func (s *Service) applyDeltas(txCtx context.Context, accounts persistence.AccountRepository, userID uuid.UUID, deltas []ledger.Delta) error {
	for _, d := range deltas {
		if err := accounts.IncrementBalance(txCtx, userID, d.AccountID, d.AmountInCents); err != nil {
			return err
		}
	}
	return nil
}

// lockAccounts serializes the read-then-decide steps of a mutation against
// other mutations touching the same accounts. IDs are locked in sorted
// order so two mutations over the same set cannot deadlock.
func (s *Service) lockAccounts(ctx context.Context, userID uuid.UUID, accountIDs []uuid.UUID) (func(), error) {
	ids := dedupe(accountIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	acquired := make([]uuid.UUID, 0, len(ids))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			if err := s.locks.ReleaseLock(ctx, userID, acquired[i]); err != nil {
				s.logger.Warn("Failed to release account lock", map[string]any{
					"user_id":    userID.String(),
					"account_id": acquired[i].String(),
					"error":      err.Error(),
				})
			}
		}
	}

	for _, id := range ids {
		var ok bool
		var err error
		for attempt := 1; attempt <= lockAttempts; attempt++ {
			ok, err = s.locks.AcquireLock(ctx, userID, id, s.lockTTL)
			if err != nil || ok {
				break
			}
			s.timeProvider.Sleep(core.Duration(attempt) * lockRetryDelay)
		}
		if err != nil {
			release()
			return nil, fmt.Errorf("failed to acquire account lock: %w", err)
		}
		if !ok {
			release()
			return nil, fmt.Errorf("%w: account %s", errs.ErrAccountLocked, id)
		}
		acquired = append(acquired, id)
	}

	return release, nil
}

// rollbackUnlessCommitted is deferred by every mutation so an early return
// on any step leaves all state untouched.
func (s *Service) rollbackUnlessCommitted(txCtx context.Context, committed *bool) {
	if *committed {
		return
	}
	if err := s.uow.Rollback(txCtx); err != nil {
		s.logger.Error("Rollback failed", map[string]any{"error": err.Error()})
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
