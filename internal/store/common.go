package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/eigerco/erarewards/pkg/db"
)

const (
	ErrFailedBatchCommit = "failed to commit batch: %w"
)

// Prefix constants for all store types
const (
	prefixEraTotal byte = iota + 1
	prefixEraPoints
	prefixSessionBlocks
	prefixEraBlocks
	prefixBalance
	prefixIssuance
	prefixEvent
	prefixEventSeq
	prefixOutbound
	prefixOutboundNonce
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixEraTotal:
		return "eraTotal"
	case prefixEraPoints:
		return "eraPoints"
	case prefixSessionBlocks:
		return "sessionBlocks"
	case prefixEraBlocks:
		return "eraBlocks"
	case prefixBalance:
		return "balance"
	case prefixIssuance:
		return "issuance"
	case prefixEvent:
		return "event"
	case prefixEventSeq:
		return "eventSeq"
	case prefixOutbound:
		return "outbound"
	case prefixOutboundNonce:
		return "outboundNonce"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and the concatenation of parts
func makeKey(prefix byte, parts ...[]byte) []byte {
	size := 1
	for _, p := range parts {
		size += len(p)
	}
	key := make([]byte, 1, size)
	key[0] = prefix
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// be32 and be64 keep numeric key components in big-endian so that byte order
// matches numeric order during iteration.
func be32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func be64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// getRLP decodes the value under key into out. found is false when the key
// is absent.
func getRLP(store db.Reader, key []byte, out any) (found bool, err error) {
	b, err := store.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := rlp.DecodeBytes(b, out); err != nil {
		return false, fmt.Errorf("decode %s value: %w", PrefixToString(key[0]), err)
	}
	return true, nil
}

func putRLP(w db.Writer, key []byte, v any) error {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("encode %s value: %w", PrefixToString(key[0]), err)
	}
	return w.Put(key, b)
}

// forEachPrefix calls fn for every key under prefix in ascending order.
func forEachPrefix(store db.KVStore, prefix []byte, fn func(key, value []byte) error) error {
	iter, err := db.NewPrefixIterator(store, prefix)
	if err != nil {
		return fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return fmt.Errorf("read iterator value: %w", err)
		}
		if err := fn(iter.Key(), value); err != nil {
			return err
		}
	}
	return nil
}

func decodeUint32(b []byte, out *uint32) error {
	return rlpDecode(b, out)
}

func rlpDecode(b []byte, out any) error {
	if err := rlp.DecodeBytes(b, out); err != nil {
		return fmt.Errorf("decode %T value: %w", out, err)
	}
	return nil
}
