// Package storetest holds the behaviour every storage.Store backend must share.
package storetest

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktsys/tradestore/models"
	"github.com/viktsys/tradestore/storage"
)

// Fields returns a complete, valid set of trade fields.
func Fields() models.TradeFields {
	return models.TradeFields{
		Symbol:   "AAPL",
		Quantity: decimal.NewFromInt(100),
		Price:    decimal.RequireFromString("150.25"),
		Side:     "BUY",
		TraderID: "john_doe",
		Account:  "ACC001",
	}
}

// TradeIDs lists the ids of trades in order.
func TradeIDs(trades []models.Trade) []string {
	ids := make([]string, 0, len(trades))
	for _, t := range trades {
		ids = append(ids, t.TradeID)
	}
	return ids
}

// Run exercises a backend. newStore must return an empty store for every call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("should round-trip a created trade", func(t *testing.T) {
		store := newStore(t)

		created, err := store.Create(ctx, Fields())
		require.NoError(t, err)
		assert.True(t, storage.ValidID(created.TradeID))
		assert.False(t, created.Timestamp.IsZero())
		assert.Nil(t, created.UpdatedTimestamp)

		got, err := store.Get(ctx, created.TradeID)
		require.NoError(t, err)
		assert.Equal(t, created.TradeID, got.TradeID)
		assert.Equal(t, "AAPL", got.Symbol)
		assert.Equal(t, "BUY", got.Side)
		assert.Equal(t, "john_doe", got.TraderID)
		assert.Equal(t, "ACC001", got.Account)
		assert.True(t, got.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, got.Price.Equal(decimal.RequireFromString("150.25")))
		assert.True(t, got.Timestamp.Equal(created.Timestamp))
	})

	t.Run("should keep long text fields intact", func(t *testing.T) {
		store := newStore(t)

		f := Fields()
		f.Symbol = strings.Repeat("S", 300)
		f.Side = strings.Repeat("B", 300)
		f.TraderID = strings.Repeat("t", 300)
		f.Account = strings.Repeat("a", 300)
		f.Notes = strings.Repeat("n", 4096)
		created, err := store.Create(ctx, f)
		require.NoError(t, err)

		got, err := store.Get(ctx, created.TradeID)
		require.NoError(t, err)
		assert.Equal(t, f.Symbol, got.Symbol)
		assert.Equal(t, f.Side, got.Side)
		assert.Equal(t, f.TraderID, got.TraderID)
		assert.Equal(t, f.Account, got.Account)
		assert.Equal(t, f.Notes, got.Notes)
	})

	t.Run("should return ErrNotFound for an unknown id", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(ctx, storage.NewTradeID())
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.Update(ctx, storage.NewTradeID(), Fields())
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.ErrorIs(t, store.Delete(ctx, storage.NewTradeID()), storage.ErrNotFound)
	})

	t.Run("should preserve identity on update", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, Fields())
		require.NoError(t, err)

		f := Fields()
		f.Quantity = decimal.NewFromInt(150)
		f.Price = decimal.RequireFromString("152.50")
		first, err := store.Update(ctx, created.TradeID, f)
		require.NoError(t, err)
		assert.Equal(t, created.TradeID, first.TradeID)
		assert.True(t, first.Timestamp.Equal(created.Timestamp))
		require.NotNil(t, first.UpdatedTimestamp)
		assert.True(t, first.UpdatedTimestamp.After(created.Timestamp))

		second, err := store.Update(ctx, created.TradeID, f)
		require.NoError(t, err)
		require.NotNil(t, second.UpdatedTimestamp)
		assert.True(t, second.UpdatedTimestamp.After(*first.UpdatedTimestamp))

		got, err := store.Get(ctx, created.TradeID)
		require.NoError(t, err)
		assert.True(t, got.Quantity.Equal(decimal.NewFromInt(150)))
		assert.True(t, got.Timestamp.Equal(created.Timestamp))
		require.NotNil(t, got.UpdatedTimestamp)
		assert.True(t, got.UpdatedTimestamp.Equal(*second.UpdatedTimestamp))
	})

	t.Run("should report not found on a repeated delete", func(t *testing.T) {
		store := newStore(t)
		created, err := store.Create(ctx, Fields())
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, created.TradeID))
		assert.ErrorIs(t, store.Delete(ctx, created.TradeID), storage.ErrNotFound)

		_, err = store.Get(ctx, created.TradeID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("should reflect deletions in the listing", func(t *testing.T) {
		store := newStore(t)

		ids := make([]string, 0, 3)
		for i := 0; i < 3; i++ {
			trade, err := store.Create(ctx, Fields())
			require.NoError(t, err)
			ids = append(ids, trade.TradeID)
		}
		require.NoError(t, store.Delete(ctx, ids[1]))

		trades, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{ids[0], ids[2]}, TradeIDs(trades))
	})

	t.Run("should list nothing when empty", func(t *testing.T) {
		store := newStore(t)

		trades, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, trades)
		assert.Empty(t, trades)
	})

	t.Run("should honour a cancelled context", func(t *testing.T) {
		store := newStore(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Create(cancelled, Fields())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
