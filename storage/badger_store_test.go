package storage

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(BadgerOptions{InMemory: true}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenBadgerStore_RequiresPath(t *testing.T) {
	_, err := OpenBadgerStore(BadgerOptions{}, quietLogger())
	assert.Error(t, err)
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerStore(BadgerOptions{Path: dir}, quietLogger())
	require.NoError(t, err)
	created, err := store.Create(ctx, aaplFields())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerStore(BadgerOptions{Path: dir}, quietLogger())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, created.TradeID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
}

func TestBadgerStore_CorruptRecords(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	good, err := store.Create(ctx, aaplFields())
	require.NoError(t, err)

	badID := NewTradeID()
	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(badID), []byte("{oops"))
	}))

	_, err = store.Get(ctx, badID)
	assert.ErrorIs(t, err, ErrCorruptData)

	trades, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{good.TradeID}, tradeIDs(trades))
}
