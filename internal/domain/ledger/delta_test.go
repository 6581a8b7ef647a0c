package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledger-api/internal/domain/entity"
)

func snapshot(txnType entity.TxnType, direction entity.Direction, cents int64, accountID uuid.UUID, toAccountID *uuid.UUID) Snapshot {
	return Snapshot{
		Type:          txnType,
		Direction:     direction,
		AmountInCents: cents,
		AccountID:     accountID,
		ToAccountID:   toAccountID,
		OccurredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestImpact(t *testing.T) {
	accountID := uuid.New()
	otherID := uuid.New()

	t.Run("credit increases the account", func(t *testing.T) {
		deltas := Impact(snapshot(entity.TxnTypeIncome, entity.DirectionCredit, 1500, accountID, nil))

		require.Len(t, deltas, 1)
		assert.Equal(t, accountID, deltas[0].AccountID)
		assert.Equal(t, int64(1500), deltas[0].AmountInCents)
	})

	t.Run("debit decreases the account", func(t *testing.T) {
		deltas := Impact(snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 1500, accountID, nil))

		require.Len(t, deltas, 1)
		assert.Equal(t, int64(-1500), deltas[0].AmountInCents)
	})

	t.Run("transfer moves money between two accounts", func(t *testing.T) {
		deltas := Impact(snapshot(entity.TxnTypeTransfer, entity.DirectionDebit, 2000, accountID, &otherID))

		require.Len(t, deltas, 2)
		assert.Equal(t, Delta{AccountID: accountID, AmountInCents: -2000}, deltas[0])
		assert.Equal(t, Delta{AccountID: otherID, AmountInCents: 2000}, deltas[1])
	})

	t.Run("non-positive amount has no impact", func(t *testing.T) {
		assert.Nil(t, Impact(snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 0, accountID, nil)))
		assert.Nil(t, Impact(snapshot(entity.TxnTypeExpense, entity.DirectionDebit, -500, accountID, nil)))
	})

	t.Run("transfer without destination has no impact", func(t *testing.T) {
		assert.Nil(t, Impact(snapshot(entity.TxnTypeTransfer, entity.DirectionDebit, 500, accountID, nil)))
	})

	t.Run("self-transfer has no impact", func(t *testing.T) {
		self := accountID
		assert.Nil(t, Impact(snapshot(entity.TxnTypeTransfer, entity.DirectionDebit, 500, accountID, &self)))
	})

	t.Run("opening balance projects like any other row", func(t *testing.T) {
		deltas := Impact(snapshot(entity.TxnTypeOpeningBalance, entity.DirectionCredit, 100000, accountID, nil))

		require.Len(t, deltas, 1)
		assert.Equal(t, int64(100000), deltas[0].AmountInCents)
	})
}

func TestComputeDeltas(t *testing.T) {
	accountID := uuid.New()
	otherID := uuid.New()

	t.Run("create yields the after impact", func(t *testing.T) {
		after := snapshot(entity.TxnTypeIncome, entity.DirectionCredit, 3000, accountID, nil)

		deltas := ComputeDeltas(OperationCreate, Snapshot{}, after)

		require.Len(t, deltas, 1)
		assert.Equal(t, int64(3000), deltas[0].AmountInCents)
	})

	t.Run("delete reverses the before impact", func(t *testing.T) {
		before := snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 3000, accountID, nil)

		deltas := ComputeDeltas(OperationDelete, before, Snapshot{})

		require.Len(t, deltas, 1)
		assert.Equal(t, int64(3000), deltas[0].AmountInCents)
	})

	t.Run("create then delete nets to zero", func(t *testing.T) {
		snap := snapshot(entity.TxnTypeTransfer, entity.DirectionDebit, 4500, accountID, &otherID)

		created := ComputeDeltas(OperationCreate, Snapshot{}, snap)
		deleted := ComputeDeltas(OperationDelete, snap, Snapshot{})

		assert.Empty(t, Aggregate(append(created, deleted...)))
	})

	t.Run("update yields the net difference", func(t *testing.T) {
		before := snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 1000, accountID, nil)
		after := snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 1500, accountID, nil)

		deltas := ComputeDeltas(OperationUpdate, before, after)

		require.Len(t, deltas, 1)
		assert.Equal(t, int64(-500), deltas[0].AmountInCents)
	})

	t.Run("update with identical snapshots yields nothing", func(t *testing.T) {
		snap := snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 1000, accountID, nil)

		assert.Empty(t, ComputeDeltas(OperationUpdate, snap, snap))
	})

	t.Run("update moving a transfer destination touches three accounts", func(t *testing.T) {
		thirdID := uuid.New()
		before := snapshot(entity.TxnTypeTransfer, entity.DirectionDebit, 1000, accountID, &otherID)
		after := snapshot(entity.TxnTypeTransfer, entity.DirectionDebit, 1000, accountID, &thirdID)

		deltas := ComputeDeltas(OperationUpdate, before, after)

		require.Len(t, deltas, 2)
		byAccount := map[uuid.UUID]int64{}
		for _, d := range deltas {
			byAccount[d.AccountID] = d.AmountInCents
		}
		assert.Equal(t, int64(-1000), byAccount[otherID])
		assert.Equal(t, int64(1000), byAccount[thirdID])
	})

	t.Run("unknown operation yields nothing", func(t *testing.T) {
		snap := snapshot(entity.TxnTypeExpense, entity.DirectionDebit, 1000, accountID, nil)

		assert.Nil(t, ComputeDeltas(Operation("merge"), snap, snap))
	})
}

func TestSnapshotOf(t *testing.T) {
	otherID := uuid.New()
	txn := &entity.Transaction{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		AccountID:     uuid.New(),
		ToAccountID:   &otherID,
		Type:          entity.TxnTypeTransfer,
		Direction:     entity.DirectionDebit,
		AmountInCents: 750,
		OccurredAt:    time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}

	snap := SnapshotOf(txn)

	assert.Equal(t, txn.Type, snap.Type)
	assert.Equal(t, txn.AmountInCents, snap.AmountInCents)
	assert.Equal(t, txn.AccountID, snap.AccountID)
	require.NotNil(t, snap.ToAccountID)
	assert.Equal(t, *txn.ToAccountID, *snap.ToAccountID)

	// the snapshot must not alias the row
	*snap.ToAccountID = uuid.New()
	assert.Equal(t, otherID, *txn.ToAccountID)
}
