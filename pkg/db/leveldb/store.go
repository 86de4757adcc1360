package leveldb

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/eigerco/erarewards/pkg/db"
)

// KVStore implements db.KVStore on top of goleveldb.
type KVStore struct {
	db     *leveldb.DB
	closed bool
	mu     sync.RWMutex
}

var syncWrites = &opt.WriteOptions{Sync: true}

// NewKVStore opens (or creates) a leveldb database in path.
func NewKVStore(path string) (*KVStore, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &KVStore{db: ldb}, nil
}

// NewMemKVStore opens a leveldb database backed by memory storage.
func NewMemKVStore() (*KVStore, error) {
	ldb, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &KVStore{db: ldb}, nil
}

func (l *KVStore) Get(key []byte) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, db.ErrClosed
	}
	value, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, db.ErrNotFound
	}
	return value, err
}

func (l *KVStore) Put(key, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return db.ErrClosed
	}
	return l.db.Put(key, value, syncWrites)
}

func (l *KVStore) Delete(key []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return db.ErrClosed
	}
	return l.db.Delete(key, syncWrites)
}

func (l *KVStore) NewBatch() db.Batch {
	return &Batch{store: l, batch: new(leveldb.Batch)}
}

func (l *KVStore) NewIterator(start, end []byte) (db.Iterator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, db.ErrClosed
	}
	return &Iterator{iter: l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func (l *KVStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}
