// Package ledger holds the pure balance-projection core. It computes which
// cached account balances a transaction mutation moves, and by how much,
// without touching storage.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

// Operation identifies the kind of mutation being projected
type Operation string

const (
	// OperationCreate introduces a new transaction row
	OperationCreate Operation = "create"
	// OperationUpdate replaces an existing row's monetary state
	OperationUpdate Operation = "update"
	// OperationDelete removes a row from the projection
	OperationDelete Operation = "delete"
)

// Delta is one relative balance adjustment for one account.
type Delta struct {
	AccountID     uuid.UUID
	AmountInCents int64
}

// Snapshot captures the monetary state of a transaction at one point in
// time. Mutations are projected from a before and an after snapshot rather
// than from the rows themselves so the engine stays storage-free.
type Snapshot struct {
	Type          entity.TxnType
	Direction     entity.Direction
	AmountInCents int64
	AccountID     uuid.UUID
	ToAccountID   *uuid.UUID
	OccurredAt    time.Time
}

// SnapshotOf captures the monetary state of a transaction row.
func SnapshotOf(t *entity.Transaction) Snapshot {
	var toAccount *uuid.UUID
	if t.ToAccountID != nil {
		id := *t.ToAccountID
		toAccount = &id
	}
	return Snapshot{
		Type:          t.Type,
		Direction:     t.Direction,
		AmountInCents: t.AmountInCents,
		AccountID:     t.AccountID,
		ToAccountID:   toAccount,
		OccurredAt:    t.OccurredAt,
	}
}

// Impact returns the canonical balance contribution of a snapshot.
//
// A malformed snapshot degrades to no impact instead of failing: a
// non-positive amount or a self-transfer contributes nothing. Mutations on
// such rows must still go through, otherwise a bad historical row could
// never be repaired.
func Impact(s Snapshot) []Delta {
	if s.AmountInCents <= 0 {
		return nil
	}

	if s.Type == entity.TxnTypeTransfer {
		if s.ToAccountID == nil || *s.ToAccountID == s.AccountID {
			return nil
		}
		return []Delta{
			{AccountID: s.AccountID, AmountInCents: -s.AmountInCents},
			{AccountID: *s.ToAccountID, AmountInCents: s.AmountInCents},
		}
	}

	return []Delta{
		{AccountID: s.AccountID, AmountInCents: s.Direction.Sign() * s.AmountInCents},
	}
}

// negate flips the sign of every delta.
func negate(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{AccountID: d.AccountID, AmountInCents: -d.AmountInCents}
	}
	return out
}

// ComputeDeltas projects a transaction mutation onto cached balances.
//
//	create: the after snapshot's impact
//	delete: the before snapshot's impact, reversed
//	update: the net difference between the two, with exact-zero nets dropped
//
// Only before (for delete) or only after (for create) is consulted; the
// other argument may be the zero Snapshot.
func ComputeDeltas(op Operation, before, after Snapshot) []Delta {
	switch op {
	case OperationCreate:
		return Impact(after)
	case OperationDelete:
		return negate(Impact(before))
	case OperationUpdate:
		return Aggregate(append(negate(Impact(before)), Impact(after)...))
	}
	return nil
}
