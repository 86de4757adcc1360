// Package dbtest holds the behaviour every db.KVStore backend must share.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/pkg/db"
)

// RunKVStoreSuite runs the shared store, batch and iterator tests against
// fresh stores produced by newStore.
func RunKVStoreSuite(t *testing.T, newStore func(t *testing.T) db.KVStore) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store db.KVStore)
	}{
		{name: "basic_put_get", fn: testBasicPutGet},
		{name: "delete_operations", fn: testDelete},
		{name: "store_and_batch_writers", fn: testWriters},
		{name: "store_closure", fn: testStoreClosure},
		{name: "basic_batch_operations", fn: testBasicBatchOperations},
		{name: "batch_commit_closure", fn: testBatchCommitAndClose},
		{name: "batch_discarded_on_close", fn: testBatchDiscardedOnClose},
		{name: "bounded_range_iteration", fn: testBoundedRangeIteration},
		{name: "prefix_iteration", fn: testPrefixIteration},
		{name: "empty_iteration", fn: testEmptyIteration},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			defer store.Close() //nolint:errcheck

			tc.fn(t, store)
		})
	}
}

func testBasicPutGet(t *testing.T, store db.KVStore) {
	key := []byte("test-key")
	value := []byte("test-value")

	require.NoError(t, store.Put(key, value))

	retrieved, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	_, err = store.Get([]byte("non-existent"))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testDelete(t *testing.T, store db.KVStore) {
	key := []byte("delete-test")

	require.NoError(t, store.Put(key, []byte("to-be-deleted")))
	require.NoError(t, store.Delete(key))

	_, err := store.Get(key)
	assert.ErrorIs(t, err, db.ErrNotFound)

	// Delete non-existent key should not error
	assert.NoError(t, store.Delete([]byte("non-existent")))
}

func testWriters(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()
	defer batch.Close() //nolint:errcheck

	require.NoError(t, store.Put([]byte("staged-delete"), []byte("v")))
	for _, w := range []db.Writer{store, batch} {
		require.NoError(t, w.Put([]byte("written"), []byte("v")))
		require.NoError(t, w.Delete([]byte("staged-delete")))
	}

	// the batch delete of an already removed key is harmless
	require.NoError(t, batch.Commit())

	var r db.Reader = store
	value, err := r.Get([]byte("written"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
	_, err = r.Get([]byte("staged-delete"))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testStoreClosure(t *testing.T, store db.KVStore) {
	require.NoError(t, store.Close())

	_, err := store.Get([]byte("key"))
	assert.ErrorIs(t, err, db.ErrClosed)
	assert.ErrorIs(t, store.Put([]byte("key"), []byte("value")), db.ErrClosed)
	assert.ErrorIs(t, store.Delete([]byte("key")), db.ErrClosed)

	// Double close should not error
	assert.NoError(t, store.Close())
}

func testBasicBatchOperations(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()
	defer batch.Close() //nolint:errcheck

	keys := [][]byte{[]byte("key1"), []byte("key2"), []byte("key3")}
	values := [][]byte{[]byte("value1"), []byte("value2"), []byte("value3")}
	for i := range keys {
		require.NoError(t, batch.Put(keys[i], values[i]))
	}
	require.NoError(t, batch.Delete(keys[1]))

	// Nothing is visible before commit
	_, err := store.Get(keys[0])
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, batch.Commit())

	val1, err := store.Get(keys[0])
	require.NoError(t, err)
	assert.Equal(t, values[0], val1)

	_, err = store.Get(keys[1])
	assert.ErrorIs(t, err, db.ErrNotFound)

	val3, err := store.Get(keys[2])
	require.NoError(t, err)
	assert.Equal(t, values[2], val3)
}

func testBatchCommitAndClose(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()

	require.NoError(t, batch.Put([]byte("key"), []byte("value")))
	require.NoError(t, batch.Commit())

	assert.ErrorIs(t, batch.Put([]byte("key2"), []byte("value2")), db.ErrBatchDone)
	assert.ErrorIs(t, batch.Delete([]byte("key2")), db.ErrBatchDone)
	assert.ErrorIs(t, batch.Commit(), db.ErrBatchDone)

	assert.NoError(t, batch.Close())
	assert.NoError(t, batch.Close())
}

func testBatchDiscardedOnClose(t *testing.T, store db.KVStore) {
	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("key"), []byte("value")))
	require.NoError(t, batch.Close())

	_, err := store.Get([]byte("key"))
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, batch.Commit(), db.ErrBatchDone)
}

func collect(t *testing.T, iter db.Iterator) ([]string, []string) {
	defer iter.Close() //nolint:errcheck

	var keys, values []string
	for iter.Next() {
		value, err := iter.Value()
		require.NoError(t, err)
		keys = append(keys, string(iter.Key()))
		values = append(values, string(value))
	}
	assert.False(t, iter.Valid())
	return keys, values
}

func testBoundedRangeIteration(t *testing.T, store db.KVStore) {
	for _, k := range []string{"e", "c", "a", "d", "b"} {
		require.NoError(t, store.Put([]byte(k), []byte("value-"+k)))
	}

	iter, err := store.NewIterator([]byte("b"), []byte("e"))
	require.NoError(t, err)

	keys, values := collect(t, iter)
	assert.Equal(t, []string{"b", "c", "d"}, keys)
	assert.Equal(t, []string{"value-b", "value-c", "value-d"}, values)
}

func testPrefixIteration(t *testing.T, store db.KVStore) {
	for _, k := range [][]byte{{1, 0xff}, {1, 2}, {1, 0xff, 0xff}, {2, 0}, {0, 9}} {
		require.NoError(t, store.Put(k, []byte{k[len(k)-1]}))
	}

	iter, err := db.NewPrefixIterator(store, []byte{1})
	require.NoError(t, err)

	keys, _ := collect(t, iter)
	assert.Equal(t, []string{string([]byte{1, 2}), string([]byte{1, 0xff}), string([]byte{1, 0xff, 0xff})}, keys)
}

func testEmptyIteration(t *testing.T, store db.KVStore) {
	iter, err := store.NewIterator([]byte("x"), []byte("y"))
	require.NoError(t, err)

	keys, _ := collect(t, iter)
	assert.Empty(t, keys)
}
