package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
	errs "github.com/ledgerkit/ledger-api/internal/domain/error"
	"github.com/ledgerkit/ledger-api/internal/domain/ledger"
	"github.com/ledgerkit/ledger-api/internal/domain/port/core"
	"github.com/ledgerkit/ledger-api/internal/domain/port/persistence"
)

// CheckpointShifter keeps opening-balance checkpoints consistent when a
// mutation introduces or removes a transaction dated before the checkpoint.
//
// The checkpoint is defined as the balance immediately before the earliest
// known transaction. A row landing earlier than it shifts that baseline by
// the negated impact of the row; a pre-checkpoint row leaving the ledger
// shifts it back. The shifter rewrites the checkpoint and returns the
// checkpoint's own impact change as deltas, which the caller must feed into
// aggregation so cached balances track the sum of live impacts.
type CheckpointShifter struct {
	logger core.Logger
}

// NewCheckpointShifter creates a checkpoint shifter
func NewCheckpointShifter(logger core.Logger) *CheckpointShifter {
	return &CheckpointShifter{logger: logger}
}

// ShiftIfNeeded absorbs one snapshot entering the ledger (removed=false) or
// un-absorbs one leaving it (removed=true). Every account the snapshot
// touches is checked against its own checkpoint; transfers can shift two.
// Must run inside the same unit of work as the triggering mutation, with
// txns bound to it.
func (s *CheckpointShifter) ShiftIfNeeded(ctx context.Context, txns persistence.TransactionRepository, userID uuid.UUID, snap ledger.Snapshot, removed bool) ([]ledger.Delta, error) {
	if snap.Type == entity.TxnTypeOpeningBalance {
		return nil, nil
	}

	impacts := ledger.Impact(snap)
	if len(impacts) == 0 {
		return nil, nil
	}

	var shifts []ledger.Delta

	for _, impact := range impacts {
		checkpoint, err := txns.FindOpeningBalance(ctx, userID, impact.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up opening balance: %w", err)
		}
		if checkpoint == nil {
			continue
		}
		if !snap.OccurredAt.Before(checkpoint.OccurredAt) {
			continue
		}

		shift := -impact.AmountInCents
		if removed {
			shift = impact.AmountInCents
		}

		newSigned := checkpoint.SignedAmount() + shift
		direction := entity.DirectionCredit
		magnitude := newSigned
		if newSigned < 0 {
			direction = entity.DirectionDebit
			magnitude = -newSigned
		}

		if err := txns.UpdateCheckpoint(ctx, checkpoint.ID, direction, magnitude); err != nil {
			return nil, errs.NewMutationError(userID, checkpoint.ID, "checkpoint_shift",
				"failed to rewrite opening balance", err)
		}

		s.logger.Debug("Opening balance checkpoint shifted", map[string]any{
			"user_id":       userID.String(),
			"account_id":    impact.AccountID.String(),
			"checkpoint_id": checkpoint.ID.String(),
			"shift_cents":   shift,
			"new_signed":    newSigned,
		})

		shifts = append(shifts, ledger.Delta{AccountID: impact.AccountID, AmountInCents: shift})
	}

	return shifts, nil
}
