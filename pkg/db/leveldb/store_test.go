package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/erarewards/pkg/db"
	"github.com/eigerco/erarewards/pkg/db/dbtest"
)

func TestKVStore(t *testing.T) {
	dbtest.RunKVStoreSuite(t, func(t *testing.T) db.KVStore {
		store, err := NewMemKVStore()
		require.NoError(t, err)
		return store
	})
}

func TestKVStoreOnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := NewKVStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put([]byte("era"), []byte{7}))
	require.NoError(t, store.Close())

	reopened, err := NewKVStore(dir)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	value, err := reopened.Get([]byte("era"))
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, value)
}
