package store

import (
	"fmt"

	"github.com/eigerco/erarewards/pkg/db"
)

// EventRecord is a persisted engine event. Data holds the RLP encoding of
// the event named by Name.
type EventRecord struct {
	Seq  uint64
	Name string
	Data []byte
}

// Events is an append-only event log for indexers.
type Events struct {
	db db.KVStore
}

func NewEvents(db db.KVStore) *Events {
	return &Events{db: db}
}

// Append stores a new event and returns its sequence number.
func (e *Events) Append(name string, data []byte) (uint64, error) {
	var next uint64
	if _, err := getRLP(e.db, []byte{prefixEventSeq}, &next); err != nil {
		return 0, fmt.Errorf("get event sequence: %w", err)
	}

	batch := e.db.NewBatch()
	defer batch.Close()

	record := EventRecord{Seq: next, Name: name, Data: data}
	if err := putRLP(batch, makeKey(prefixEvent, be64(next)), record); err != nil {
		return 0, fmt.Errorf("store event %d: %w", next, err)
	}
	if err := putRLP(batch, []byte{prefixEventSeq}, next+1); err != nil {
		return 0, fmt.Errorf("store event sequence: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return 0, fmt.Errorf(ErrFailedBatchCommit, err)
	}
	return next, nil
}

// List returns every stored event in sequence order.
func (e *Events) List() ([]EventRecord, error) {
	var records []EventRecord
	err := forEachPrefix(e.db, []byte{prefixEvent}, func(_, value []byte) error {
		var record EventRecord
		if err := rlpDecode(value, &record); err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return records, nil
}
