package db

// Reader reads single keys. Get returns ErrNotFound when the key is absent.
type Reader interface {
	Get(key []byte) ([]byte, error)
}

// Writer changes keys, either directly on a store or staged in a batch.
type Writer interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// KVStore is an ordered key-value store. Ledger writes that must land
// together go through a Batch.
type KVStore interface {
	Reader
	Writer
	NewBatch() Batch
	// NewIterator walks the keys in [start, end) in ascending order.
	NewIterator(start, end []byte) (Iterator, error)
	Close() error
}

// Batch stages writes and applies them atomically on Commit. A batch cannot
// be reused after Commit or Close.
type Batch interface {
	Writer
	Commit() error
	Close() error
}

// Iterator provides sequential access over a range of key-value pairs.
// Iterators must be closed after use.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}
