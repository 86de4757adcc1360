package db

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, suitable as an exclusive iterator upper bound. A nil result means
// the range is unbounded.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// NewPrefixIterator iterates over every key starting with prefix.
func NewPrefixIterator(store KVStore, prefix []byte) (Iterator, error) {
	return store.NewIterator(prefix, PrefixEnd(prefix))
}
