package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	accountA := uuid.New()
	accountB := uuid.New()

	t.Run("merges deltas per account", func(t *testing.T) {
		out := Aggregate([]Delta{
			{AccountID: accountA, AmountInCents: 100},
			{AccountID: accountB, AmountInCents: 50},
			{AccountID: accountA, AmountInCents: -30},
		})

		require.Len(t, out, 2)
		byAccount := map[uuid.UUID]int64{}
		for _, d := range out {
			byAccount[d.AccountID] = d.AmountInCents
		}
		assert.Equal(t, int64(70), byAccount[accountA])
		assert.Equal(t, int64(50), byAccount[accountB])
	})

	t.Run("drops exact-zero nets", func(t *testing.T) {
		out := Aggregate([]Delta{
			{AccountID: accountA, AmountInCents: 100},
			{AccountID: accountA, AmountInCents: -100},
			{AccountID: accountB, AmountInCents: 1},
		})

		require.Len(t, out, 1)
		assert.Equal(t, accountB, out[0].AccountID)
	})

	t.Run("output order is independent of input order", func(t *testing.T) {
		forward := Aggregate([]Delta{
			{AccountID: accountA, AmountInCents: 10},
			{AccountID: accountB, AmountInCents: 20},
		})
		reversed := Aggregate([]Delta{
			{AccountID: accountB, AmountInCents: 20},
			{AccountID: accountA, AmountInCents: 10},
		})

		assert.Equal(t, forward, reversed)
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, Aggregate(nil))
		assert.Nil(t, Aggregate([]Delta{}))
	})
}
