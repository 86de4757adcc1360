package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/holiman/uint256"

	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/pkg/db"
)

// ValidatorPoints is one entry of an era's individual reward points.
type ValidatorPoints struct {
	Validator crypto.ValidatorID
	Points    uint32
}

// ValidatorBlocks is the number of blocks a validator authored in the
// current session.
type ValidatorBlocks struct {
	Validator crypto.ValidatorID
	Blocks    uint32
}

// Rewards persists the era reward ledger and the block production counters.
type Rewards struct {
	db db.KVStore
}

// NewRewards creates a new rewards store using KVStore
func NewRewards(db db.KVStore) *Rewards {
	return &Rewards{db: db}
}

// EraTotal returns the total points of an era. found is false when the era
// has no ledger entry.
func (r *Rewards) EraTotal(era uint32) (total *uint256.Int, found bool, err error) {
	total = new(uint256.Int)
	found, err = getRLP(r.db, makeKey(prefixEraTotal, be32(era)), total)
	if err != nil {
		return nil, false, fmt.Errorf("get era %d total: %w", era, err)
	}
	return total, found, nil
}

// EraValidatorPoints returns the points of one validator, zero if absent.
func (r *Rewards) EraValidatorPoints(era uint32, validator crypto.ValidatorID) (uint32, error) {
	var points uint32
	if _, err := getRLP(r.db, makeKey(prefixEraPoints, be32(era), validator[:]), &points); err != nil {
		return 0, fmt.Errorf("get era %d points of %s: %w", era, validator, err)
	}
	return points, nil
}

// EraPoints lists the individual points of an era ordered by validator id.
func (r *Rewards) EraPoints(era uint32) ([]ValidatorPoints, error) {
	prefix := makeKey(prefixEraPoints, be32(era))
	var entries []ValidatorPoints
	err := forEachPrefix(r.db, prefix, func(key, value []byte) error {
		var entry ValidatorPoints
		copy(entry.Validator[:], key[len(prefix):])
		if err := decodeUint32(value, &entry.Points); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list era %d points: %w", era, err)
	}
	return entries, nil
}

// PutEraPoints atomically writes the era total together with the changed
// individual entries.
func (r *Rewards) PutEraPoints(era uint32, total *uint256.Int, changed []ValidatorPoints) error {
	batch := r.db.NewBatch()
	defer batch.Close()

	if err := writeEraPoints(batch, era, total, changed); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}

// PutSessionPoints writes era points like PutEraPoints and clears every
// session block counter in the same batch.
func (r *Rewards) PutSessionPoints(era uint32, total *uint256.Int, changed []ValidatorPoints) error {
	batch := r.db.NewBatch()
	defer batch.Close()

	if len(changed) > 0 {
		if err := writeEraPoints(batch, era, total, changed); err != nil {
			return err
		}
	}
	if err := r.deleteSessionBlocks(batch); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}

func writeEraPoints(batch db.Batch, era uint32, total *uint256.Int, changed []ValidatorPoints) error {
	if err := putRLP(batch, makeKey(prefixEraTotal, be32(era)), total); err != nil {
		return fmt.Errorf("store era %d total: %w", era, err)
	}
	for _, entry := range changed {
		if err := putRLP(batch, makeKey(prefixEraPoints, be32(era), entry.Validator[:]), entry.Points); err != nil {
			return fmt.Errorf("store era %d points of %s: %w", era, entry.Validator, err)
		}
	}
	return nil
}

// PruneErasUpTo removes every era at or below limit that has a ledger entry
// or a block count, and returns the removed eras in ascending order.
func (r *Rewards) PruneErasUpTo(limit uint32) ([]uint32, error) {
	seen := make(map[uint32]struct{})
	var eras []uint32
	for _, prefix := range []byte{prefixEraTotal, prefixEraBlocks} {
		found, err := r.erasUpTo(prefix, limit)
		if err != nil {
			return nil, err
		}
		for _, era := range found {
			if _, ok := seen[era]; !ok {
				seen[era] = struct{}{}
				eras = append(eras, era)
			}
		}
	}
	if len(eras) == 0 {
		return nil, nil
	}
	slices.Sort(eras)

	batch := r.db.NewBatch()
	defer batch.Close()

	for _, era := range eras {
		if err := r.deleteEra(batch, era); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return eras, nil
}

// erasUpTo lists the eras keyed under prefix that are at or below limit.
func (r *Rewards) erasUpTo(prefix byte, limit uint32) ([]uint32, error) {
	end := db.PrefixEnd([]byte{prefix})
	if limit < math.MaxUint32 {
		end = makeKey(prefix, be32(limit+1))
	}
	iter, err := r.db.NewIterator([]byte{prefix}, end)
	if err != nil {
		return nil, fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	var eras []uint32
	for iter.Next() {
		eras = append(eras, binary.BigEndian.Uint32(iter.Key()[1:]))
	}
	return eras, nil
}

func (r *Rewards) deleteEra(batch db.Batch, era uint32) error {
	if err := batch.Delete(makeKey(prefixEraTotal, be32(era))); err != nil {
		return fmt.Errorf("delete era %d total: %w", era, err)
	}
	if err := batch.Delete(makeKey(prefixEraBlocks, be32(era))); err != nil {
		return fmt.Errorf("delete era %d blocks: %w", era, err)
	}
	err := forEachPrefix(r.db, makeKey(prefixEraPoints, be32(era)), func(key, _ []byte) error {
		// keys from the iterator may be reused by the backend
		return batch.Delete(append([]byte(nil), key...))
	})
	if err != nil {
		return fmt.Errorf("delete era %d points: %w", era, err)
	}
	return nil
}

// SessionBlocks returns the blocks a validator authored in the current session.
func (r *Rewards) SessionBlocks(validator crypto.ValidatorID) (uint32, error) {
	var blocks uint32
	if _, err := getRLP(r.db, makeKey(prefixSessionBlocks, validator[:]), &blocks); err != nil {
		return 0, fmt.Errorf("get session blocks of %s: %w", validator, err)
	}
	return blocks, nil
}

// AllSessionBlocks lists the session block counters ordered by validator id.
func (r *Rewards) AllSessionBlocks() ([]ValidatorBlocks, error) {
	prefix := []byte{prefixSessionBlocks}
	var entries []ValidatorBlocks
	err := forEachPrefix(r.db, prefix, func(key, value []byte) error {
		var entry ValidatorBlocks
		copy(entry.Validator[:], key[len(prefix):])
		if err := decodeUint32(value, &entry.Blocks); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list session blocks: %w", err)
	}
	return entries, nil
}

// ClearSessionBlocks removes every session block counter.
func (r *Rewards) ClearSessionBlocks() error {
	batch := r.db.NewBatch()
	defer batch.Close()

	if err := r.deleteSessionBlocks(batch); err != nil {
		return err
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}

func (r *Rewards) deleteSessionBlocks(batch db.Batch) error {
	err := forEachPrefix(r.db, []byte{prefixSessionBlocks}, func(key, _ []byte) error {
		return batch.Delete(append([]byte(nil), key...))
	})
	if err != nil {
		return fmt.Errorf("clear session blocks: %w", err)
	}
	return nil
}

// EraBlocks returns the number of blocks produced in an era.
func (r *Rewards) EraBlocks(era uint32) (uint32, error) {
	var blocks uint32
	if _, err := getRLP(r.db, makeKey(prefixEraBlocks, be32(era)), &blocks); err != nil {
		return 0, fmt.Errorf("get era %d blocks: %w", era, err)
	}
	return blocks, nil
}

// PutBlockCounts atomically stores the session counter of a validator and
// the block count of an era.
func (r *Rewards) PutBlockCounts(era uint32, validator crypto.ValidatorID, sessionBlocks, eraBlocks uint32) error {
	batch := r.db.NewBatch()
	defer batch.Close()

	if err := putRLP(batch, makeKey(prefixSessionBlocks, validator[:]), sessionBlocks); err != nil {
		return fmt.Errorf("store session blocks of %s: %w", validator, err)
	}
	if err := putRLP(batch, makeKey(prefixEraBlocks, be32(era)), eraBlocks); err != nil {
		return fmt.Errorf("store era %d blocks: %w", era, err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return nil
}

// Eras lists every era with a ledger entry in ascending order.
func (r *Rewards) Eras() ([]uint32, error) {
	var eras []uint32
	err := forEachPrefix(r.db, []byte{prefixEraTotal}, func(key, _ []byte) error {
		eras = append(eras, binary.BigEndian.Uint32(key[1:]))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list eras: %w", err)
	}
	return eras, nil
}
